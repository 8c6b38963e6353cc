// Package ports maps well-known ports to a short L7 protocol name, purely
// for log/metric readability — it has no bearing on classification, which
// happens entirely off the event's reported L4Proto.
package ports

// L7Name returns a short L7 protocol name guessed from a server port. It is
// informational only: callers must not use it to reclassify a connection.
func L7Name(port uint16) string {
	if port == 0 {
		return "na"
	}

	// Keep this list intentionally small and conservative.
	switch port {
	case 20, 21:
		return "ftp"
	case 22:
		return "ssh"
	case 23:
		return "telnet"
	case 25:
		return "smtp"
	case 53:
		return "dns"
	case 80:
		return "http"
	case 110:
		return "pop3"
	case 143:
		return "imap"
	case 389:
		return "ldap"
	case 443:
		return "https"
	case 465, 587:
		return "smtp"
	case 631:
		return "ipp"
	case 993:
		return "imaps"
	case 995:
		return "pop3s"
	case 3306:
		return "mysql"
	case 5432:
		return "postgres"
	case 6379:
		return "redis"
	case 9200:
		return "elasticsearch"
	}

	return "unknown"
}

