package token

import (
	"sync"
	"sync/atomic"
)

// nextTokenID tracks the next available dynamic token ID.
// Dynamic tokens start after maxBuiltin (999).
var nextTokenID = int32(maxBuiltin)

// registerMu serializes Register calls.
var registerMu sync.Mutex

// dynamicTokens maps registered dynamic tokens to their names.
// Register writes it under registerMu; lookups do not lock.
var dynamicTokens = make(map[TokenType]string)

// dynamicKeywords maps registered dynamic keyword names to their token types.
var dynamicKeywords = make(map[string]TokenType)

// Register registers a new dynamic token with the given name.
// This is used by dialects to register dialect-specific keywords
// like QUALIFY, ILIKE, etc.
//
// Registering a name that is already registered (directly or through
// RegisterAlias) returns its existing token type. Concurrent calls are
// serialized by registerMu, so registering the same name from several
// goroutines yields a single token type.
func Register(name string) TokenType {
	registerMu.Lock()
	defer registerMu.Unlock()
	if t, ok := dynamicKeywords[name]; ok {
		return t
	}
	id := atomic.AddInt32(&nextTokenID, 1)
	t := TokenType(id)

	dynamicTokens[t] = name
	dynamicKeywords[name] = t

	return t
}

// RegisterAlias registers an additional keyword spelling that resolves to an
// already-registered dynamic token type (e.g. "temp" alongside "temporary").
func RegisterAlias(name string, t TokenType) {
	dynamicKeywords[name] = t
}

// getDynamicName returns the name of a dynamic token.
func getDynamicName(t TokenType) (string, bool) {
	name, ok := dynamicTokens[t]
	return name, ok
}

// LookupDynamicKeyword returns the token type for a dynamic keyword.
// Returns IDENT and false if the keyword is not registered.
func LookupDynamicKeyword(name string) (TokenType, bool) {
	if tok, ok := dynamicKeywords[name]; ok {
		return tok, true
	}
	return IDENT, false
}

// IsDynamic returns true if the token type is a dynamically registered token.
func IsDynamic(t TokenType) bool {
	return t > maxBuiltin
}

// RegisteredTokens returns a copy of all registered dynamic tokens.
func RegisteredTokens() map[TokenType]string {
	result := make(map[TokenType]string, len(dynamicTokens))
	for k, v := range dynamicTokens {
		result[k] = v
	}
	return result
}
