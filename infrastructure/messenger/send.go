package messenger

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

// Deliver implements domain.Deliverer on the Send API. Carousels larger
// than the template limit go out as consecutive sends.
func (c *Client) Deliver(ctx context.Context, recipientID string, out domain.Outbound) error {
	reqs, err := render(recipientID, out)
	if err != nil {
		return pkgError.DeliveryError(err.Error())
	}

	for _, req := range reqs {
		var resp sendResponse
		if err := c.do(ctx, fasthttp.MethodPost, c.endpoint("me/messages", nil), req, &resp); err != nil {
			return fmt.Errorf("failed to send %s to %s: %w", out.Describe(), recipientID, err)
		}
		if resp.MessageID != "" {
			logrus.WithFields(logrus.Fields{
				"recipient":  resp.RecipientID,
				"message_id": resp.MessageID,
			}).Debug("[MESSENGER] Message sent")
		}
	}
	return nil
}
