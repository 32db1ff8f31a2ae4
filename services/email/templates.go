package email

import "fmt"

const baseTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>FLASHXSHIP</title>
</head>
<body style="margin: 0; padding: 0; background-color: #f9fafb; font-family: Arial, sans-serif;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%%" style="background-color: #f9fafb;">
        <tr>
            <td align="center" style="padding: 40px 20px;">
                <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="600" style="max-width: 600px; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
                    <tr>
                        <td style="background-color: #1a2744; padding: 28px 20px; text-align: center;">
                            <span style="color: #ffffff; font-size: 22px; font-weight: bold; letter-spacing: 2px;">FLASHXSHIP</span>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px;">
                            <h2 style="margin: 0 0 16px 0; color: #1a2744;">%s</h2>
                            <div style="color: #374151; font-size: 15px; line-height: 1.6;">%s</div>
                        </td>
                    </tr>
                    <tr>
                        <td style="background-color: #f3f4f6; padding: 20px; text-align: center; color: #6b7280; font-size: 12px;">
                            FLASHXSHIP &middot; This is an automated message, please do not reply directly.
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`

// Status lines keyed by order status; the subject doubles as the heading.
var orderStatusSubjects = map[string]string{
	"CONFIRMED": "Your order has been confirmed",
	"REJECTED":  "Your order has been rejected",
	"SHIPPED":   "Your order is on its way",
	"DELIVERED": "Your order has been delivered",
}

var orderStatusBodies = map[string]string{
	"CONFIRMED": "Your order #%d has been confirmed. We will keep you posted as it progresses.",
	"REJECTED":  "Your order #%d has been rejected. Please contact us for more information.",
	"SHIPPED":   "Your order #%d has been shipped and is on its way to you.",
	"DELIVERED": "Your order #%d has been delivered. Thank you for your trust!",
}

// BuildOrderStatusEmail renders the notification for an order status change.
// Unknown statuses fall back to a generic update line.
func BuildOrderStatusEmail(status string, orderID int) (subject, body string) {
	subject, ok := orderStatusSubjects[status]
	if !ok {
		subject = "Update on your order"
	}

	line, ok := orderStatusBodies[status]
	if !ok {
		line = "The status of your order #%d has been updated."
	}

	content := fmt.Sprintf("<p>"+line+"</p>", orderID)
	return subject + " - FLASHXSHIP", fmt.Sprintf(baseTemplate, subject, content)
}

// BuildContactResponseEmail renders the staff reply to a contact message.
// sentDate is the date the original message was filed; empty skips the line.
func BuildContactResponseEmail(name, originalSubject, response, sentDate string) (subject, body string) {
	subject = fmt.Sprintf("Re: %s", originalSubject)
	intro := fmt.Sprintf("<p>Hello %s,</p>", name)
	if sentDate != "" {
		intro += fmt.Sprintf("<p>Regarding your message from %s:</p>", sentDate)
	}
	content := fmt.Sprintf(
		"%s<p>%s</p><p>Best regards,<br>The FLASHXSHIP team</p>",
		intro, response)
	return subject, fmt.Sprintf(baseTemplate, "Response to your message", content)
}

// BuildReviewInviteEmail renders the review invitation sent a few days after
// an order is delivered.
func BuildReviewInviteEmail(orderID int, reviewURL string) (subject, body string) {
	content := fmt.Sprintf(
		"<p>Your order #%d was delivered a few days ago. We hope everything arrived in good shape!</p>"+
			"<p><a href=\"%s\" style=\"display: inline-block; padding: 12px 24px; background-color: #1a2744; color: #ffffff; text-decoration: none; border-radius: 6px;\">Leave a review</a></p>"+
			"<p>Your feedback helps other customers and helps us improve.</p>",
		orderID, reviewURL)
	return "How was your order? - FLASHXSHIP", fmt.Sprintf(baseTemplate, "Tell us how it went", content)
}

// BuildPasswordResetEmail renders the one-time reset link email.
func BuildPasswordResetEmail(resetURL string) (subject, body string) {
	content := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href=\"%s\" style=\"display: inline-block; padding: 12px 24px; background-color: #1a2744; color: #ffffff; text-decoration: none; border-radius: 6px;\">Reset your password</a></p>"+
			"<p>If you did not request this, you can safely ignore this email. The link expires in one hour.</p>",
		resetURL)
	return "Password reset - FLASHXSHIP", fmt.Sprintf(baseTemplate, "Reset your password", content)
}
