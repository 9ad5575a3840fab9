package email

import "context"

// SendWelcomeEmail greets a newly registered user.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, userName string) error {
	return c.SendEmail(ctx, to, "Welcome to Blockitin AI!", TemplateWelcome, map[string]string{
		"UserName": userName,
	})
}
