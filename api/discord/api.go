package discord

import "context"

type Api interface {
	ExecuteWebhook(ctx context.Context, webhookUrl string, payload WebhookPayload) error
}
