package policies

import "context"

type credentialKey struct{}

// ContextWithCredential stores the caller's bearer token.
func ContextWithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential)
}

func CredentialFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(credentialKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
