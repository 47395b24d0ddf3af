package utils

import "strings"

const (
	RPCERROR = "JSON RPC ERROR WITH MESSAGE"
)

// Fragments the block engine uses when a bundle references an expired blockhash
var staleBlockhashMessages = []string{
	"blockhash not found",
	"blockhash expired",
	"expired blockhash",
	"block height exceeded",
}

func IsStaleBlockhashMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range staleBlockhashMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
