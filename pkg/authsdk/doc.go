/*
Package authsdk provides a client SDK for the Survey Basket auth API, and the
wire types and error codes the server shares with it.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (login, registration, password
    reset, bootstrap, health) and creation of Sessions
  - Session: authenticated operations with automatic token refresh

	client := authsdk.NewSDKClient("https://api.example.com")

	if err := client.Register(ctx, authsdk.RegisterRequest{...}); err != nil {
		return err
	}

	session, err := client.AuthenticateWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	profile, err := session.Me(ctx)

# Token Refresh

Access tokens live for 30 minutes. Refreshing requires the current access
token as well as the refresh token, and the server rejects an expired
access token, so a Session rotates its pair 30 seconds before expiry. Each
refresh token can be used once; a Session that loses a race with another
holder of the same pair gets User.InvalidRefreshToken and must log in again.

# Errors

Every failure response decodes into *Error. Compare with the predefined
values:

	_, err := client.Login(ctx, email, password)
	if errors.Is(err, authsdk.ErrLockedUser) {
		// wait for the lockout to pass
	}
*/
package authsdk
