package utils

import (
	"fmt"
	"net/http"

	"cursapp/config"
	"cursapp/logger"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendEmail delivers one HTML message through SendGrid. Without SENDGRID_API_KEY the
// message is only logged.
func SendEmail(to, name, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.SendgridAPIKey == "" {
		logger.L().Info("email not sent: sendgrid disabled", "to", to, "subject", subject)
		return nil
	}

	p := sgmail.NewPersonalization()
	p.Subject = "[" + cfg.EmailSenderName + "] " + subject
	p.AddTos(sgmail.NewEmail(name, to))

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	req := sendgrid.GetRequest(cfg.SendgridAPIKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid returned %d: %s", res.StatusCode, res.Body)
	}
	logger.L().Debug("email sent", "to", to, "subject", subject)
	return nil
}

func getEmailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
		.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
		.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
		.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #F2A541; margin: 20px 0; }
		.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s</div>
		<div class="footer">This is an automated message, please do not reply.</div>
	</div>
</body>
</html>`, title, bodyContent)
}

// SendPaymentConfirmation notifies the student that the gateway confirmed the payment.
// It runs in the background; failures are logged.
func SendPaymentConfirmation(to, name, courseTitle string, amount decimal.Decimal, reference string) {
	body := fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Your payment has been confirmed and you now have full access to your course.</p>
		<div class="info-box">
			<p><strong>Course:</strong> %s</p>
			<p><strong>Amount:</strong> USD %s</p>
			<p><strong>Reference:</strong> %s</p>
		</div>
		<p>Happy learning!</p>`, name, courseTitle, amount.StringFixed(2), reference)
	html := getEmailTemplate("Payment confirmed", body)

	go func() {
		if err := SendEmail(to, name, "Payment confirmed: "+courseTitle, html); err != nil {
			logger.L().Error("payment confirmation email failed", "to", to, "error", err)
		}
	}()
}
