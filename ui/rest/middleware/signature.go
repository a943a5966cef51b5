package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	pkgError "github.com/AzielCF/az-relay/pkg/error"
	"github.com/AzielCF/az-relay/pkg/utils"
)

// WebhookSignature rejects webhook bodies whose X-Hub-Signature(-256)
// header does not match appSecret. An empty secret disables the check.
func WebhookSignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if appSecret == "" {
			return c.Next()
		}

		signature := c.Get(utils.HeaderSignature256)
		if signature == "" {
			signature = c.Get(utils.HeaderSignature)
		}

		if err := utils.VerifySignature(appSecret, c.Body(), signature); err != nil {
			logrus.WithField("ip", c.IP()).Warnf("[WEBHOOK] Rejected payload: %v", err)
			verr := pkgError.VerificationError(err.Error())
			return c.Status(verr.StatusCode()).JSON(utils.ResponseData{
				Status:  verr.StatusCode(),
				Code:    verr.ErrCode(),
				Message: verr.Error(),
			})
		}
		return c.Next()
	}
}
