package net

import (
	"net"

	"go.uber.org/zap"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP(log *zap.Logger) string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out; fall back to the interfaces
		return localIPFallback(log)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func localIPFallback(log *zap.Logger) string {
	ifaces, err := net.Interfaces()
	if err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			addrs, _ := iface.Addrs()
			for _, a := range addrs {
				if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
					return ipnet.IP.String()
				}
			}
		}
	}
	if log != nil {
		log.Warn("no suitable local IP found, share link uses loopback", zap.Error(err))
	}
	return "127.0.0.1"
}
