package authsdk

import (
	"context"
	"net/http"
)

// Register creates an unconfirmed account. A confirmation link is emailed.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.post(ctx, "/v1/auth/register", req)
}

// ConfirmEmail redeems the code from a confirmation link.
func (c *SDKClient) ConfirmEmail(ctx context.Context, userID, code string) error {
	return c.post(ctx, "/v1/auth/confirm-email", ConfirmEmailRequest{UserID: userID, Code: code})
}

// ResendConfirmationEmail issues a new confirmation code. Unknown addresses
// succeed without sending anything.
func (c *SDKClient) ResendConfirmationEmail(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/auth/resend-confirmation-email", EmailRequest{Email: email})
}

// ForgetPassword emails a reset link. Unknown addresses succeed without
// sending anything.
func (c *SDKClient) ForgetPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/auth/forget-password", EmailRequest{Email: email})
}

// ResetPassword redeems the code from a reset link.
func (c *SDKClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.post(ctx, "/v1/auth/reset-password", req)
}

func (c *SDKClient) post(ctx context.Context, path string, body any) error {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}
