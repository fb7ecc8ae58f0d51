package health

import "time"

type ServerOpt func(*Server)

func WithHost(host string) ServerOpt {
	return func(s *Server) {
		s.host = host
	}
}

func WithPort(port uint16) ServerOpt {
	return func(s *Server) {
		s.port = port
	}
}

func WithInterval(d time.Duration) ServerOpt {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}
