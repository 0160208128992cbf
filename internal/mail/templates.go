package mail

import "fmt"

const checkoutURL = "https://whop.com/api-app-w-ra-uj15-o8-i8n-l2-premium-access/"

func welcomeHTML(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 40px 20px; text-align: center; border-radius: 8px 8px 0 0; }
      .content { background: #ffffff; padding: 40px 30px; border-radius: 0 0 8px 8px; }
      .button { display: inline-block; background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-weight: bold; margin: 20px 0; }
      .footer { text-align: center; padding: 20px; color: #666; font-size: 14px; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1>Welcome to Tom's Trading Room!</h1>
      </div>
      <div class="content">
        <p>Hey %s!</p>
        <p>Welcome to the community! Your membership has been activated and you now have full access to:</p>
        <ul>
          <li><strong>Live Trading Sessions</strong> - Watch Tom trade in real-time</li>
          <li><strong>1-on-1 Mentorship</strong> - Get personalized guidance</li>
          <li><strong>Exclusive Community</strong> - Connect with fellow traders</li>
          <li><strong>Premium Resources</strong> - Access all our trading materials</li>
        </ul>
        <p>Ready to get started?</p>
        <a href="https://discord.gg/your-server" class="button">Join Our Discord</a>
        <p>If you have any questions, just reply to this email. We're here to help!</p>
        <p>Happy trading,<br><strong>Tom's Trading Room Team</strong></p>
      </div>
      <div class="footer">
        <p>Tom's Trading Room | Elite Trading Mentorship</p>
      </div>
    </div>
  </body>
</html>`, name)
}

func refundHTML(name, amount string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background: #3b82f6; color: white; padding: 40px 20px; text-align: center; border-radius: 8px 8px 0 0; }
      .content { background: #ffffff; padding: 40px 30px; border-radius: 0 0 8px 8px; }
      .info-box { background: #f3f4f6; padding: 20px; border-radius: 6px; margin: 20px 0; }
      .footer { text-align: center; padding: 20px; color: #666; font-size: 14px; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1>Refund Processed</h1>
      </div>
      <div class="content">
        <p>Hey %s,</p>
        <p>Your refund has been processed successfully.</p>
        <div class="info-box">
          <strong>Refund Amount:</strong> %s<br>
          <strong>Processing Time:</strong> 5-10 business days
        </div>
        <p>The refund will appear on your original payment method within 5-10 business days depending on your bank or card issuer.</p>
        <p><strong>What's next?</strong></p>
        <ul>
          <li>You'll receive a separate confirmation from your payment provider</li>
          <li>Your account access has been adjusted accordingly</li>
          <li>You're welcome to rejoin us anytime</li>
        </ul>
        <p>If you have any questions about this refund, just reply to this email.</p>
        <p>Thanks for giving us a try.</p>
        <p>Best regards,<br><strong>Tom's Trading Room Team</strong></p>
      </div>
      <div class="footer">
        <p>Tom's Trading Room | Customer Support</p>
      </div>
    </div>
  </body>
</html>`, name, amount)
}

func membershipExpiredHTML(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background: #ef4444; color: white; padding: 40px 20px; text-align: center; border-radius: 8px 8px 0 0; }
      .content { background: #ffffff; padding: 40px 30px; border-radius: 0 0 8px 8px; }
      .highlight { background: #fef3c7; padding: 15px; border-left: 4px solid #f59e0b; margin: 20px 0; border-radius: 4px; }
      .button { display: inline-block; background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-weight: bold; margin: 20px 0; }
      .footer { text-align: center; padding: 20px; color: #666; font-size: 14px; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1>Your Membership Has Expired</h1>
      </div>
      <div class="content">
        <p>Hey %s,</p>
        <div class="highlight">
          Your membership has expired and your access to the community has ended.
        </div>
        <p>Reactivate your membership now to regain instant access to:</p>
        <ul>
          <li>Live trading sessions with Tom</li>
          <li>1-on-1 mentorship opportunities</li>
          <li>Exclusive community Discord</li>
          <li>Premium trading resources and strategies</li>
        </ul>
        <a href="%s" class="button">Reactivate Membership</a>
        <p>We'd love to see you back in the community!</p>
        <p>Best regards,<br><strong>Tom's Trading Room Team</strong></p>
      </div>
      <div class="footer">
        <p>Tom's Trading Room | Reactivate Anytime</p>
      </div>
    </div>
  </body>
</html>`, name, checkoutURL)
}
