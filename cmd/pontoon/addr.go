package main

import (
	"fmt"
	"net"
	"strconv"
)

// splitAddr parses host:port, keeping defaultPort when only a host is given.
// An empty host (":8080") listens on all interfaces.
func splitAddr(addr string, defaultPort int) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		if _, _, err2 := net.SplitHostPort(addr + ":0"); err2 == nil {
			return addr, defaultPort, nil
		}
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %q", addr)
	}
	return host, port, nil
}
