package rediskey

import "fmt"

// Link keys (global convention across services)
const LinkCodePrefix = "link:code"

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildLinkCodeKey returns "link:code:{linkCode}"
func BuildLinkCodeKey(code string) string {
	return NamespaceKey(LinkCodePrefix, code)
}
