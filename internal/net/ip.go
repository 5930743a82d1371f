package net

import (
	"net"

	"ScoreScribble/internal/state"
)

// OutgoingIP finds the preferred LAN address to advertise.
func OutgoingIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Offline networks still have interfaces worth advertising.
		return localIPFallback()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}

// localIPFallback picks the first IPv4 address of an interface that is up
// and not loopback.
func localIPFallback() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4(), nil
			}
		}
	}
	state.Logger().Warn("net: no LAN address found, using loopback")
	return net.IPv4(127, 0, 0, 1), nil
}
