package handler

import (
	"fmt"
	"html"
	"time"
)

// Static HTML served to browsers by the unsubscribe and purchase-redirect
// endpoints. Kept inline: the pages are tiny and have no other consumers.

const pageStyle = `body { font-family: Arial, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; text-align: center; }
      .error { color: #ef4444; }
      h1.ok { color: #10b981; }
      h1.info { color: #3b82f6; }
      p { line-height: 1.6; color: #333; }
      .feedback { background: #f3f4f6; padding: 20px; border-radius: 8px; margin-top: 30px; }
      .button { display: inline-block; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 20px; }`

func page(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <title>%s - Tom's Trading Room</title>
    <style>
      %s
    </style>
  </head>
  <body>
%s
  </body>
</html>`, title, pageStyle, body)
}

func invalidRequestPage() string {
	return page("Unsubscribe", `    <h1 class="error">Invalid Request</h1>
    <p>No email address provided.</p>`)
}

func userNotFoundPage() string {
	return page("Unsubscribe", `    <h1 class="error">User Not Found</h1>
    <p>We couldn't find this email address in our system.</p>`)
}

func errorPage() string {
	return page("Error", `    <h1 class="error">Error</h1>
    <p>Something went wrong. Please try again later or contact support.</p>`)
}

func alreadyUnsubscribedPage(checkoutURL string) string {
	return page("Already Unsubscribed", fmt.Sprintf(`    <h1 class="info">Already Unsubscribed</h1>
    <p>You're already unsubscribed from our emails.</p>
    <p>If you'd like to rejoin, visit:</p>
    <a href="%s" class="button">Rejoin Tom's Trading Room</a>`, checkoutURL))
}

func unsubscribedPage(email, checkoutURL string) string {
	return page("Unsubscribed", fmt.Sprintf(`    <h1 class="ok">You've Been Unsubscribed</h1>
    <p>You won't receive any more emails from Tom's Trading Room.</p>
    <div class="feedback">
      <p><strong>We're sorry to see you go!</strong></p>
      <p>If you change your mind, you can always rejoin our community:</p>
      <a href="%s" class="button">Rejoin Tom's Trading Room</a>
    </div>
    <p style="margin-top: 30px; font-size: 14px; color: #666;">
      Unsubscribed: %s<br>
      Date: %s
    </p>`, checkoutURL, html.EscapeString(email), time.Now().Format("1/2/2006")))
}

// purchaseRedirectPage sets the client-side purchase flag and bounces the
// browser to the thank-you page after a webhook-detected purchase.
const purchaseRedirectPage = `<!DOCTYPE html>
<html>
<head>
  <title>Redirecting...</title>
  <style>
    body {
      background: #020513;
      color: white;
      font-family: system-ui, -apple-system, sans-serif;
      display: flex;
      align-items: center;
      justify-content: center;
      height: 100vh;
      margin: 0;
    }
    .loader { text-align: center; }
    .spinner {
      border: 3px solid rgba(255, 255, 255, 0.1);
      border-top: 3px solid white;
      border-radius: 50%;
      width: 40px;
      height: 40px;
      animation: spin 1s linear infinite;
      margin: 0 auto 20px;
    }
    @keyframes spin {
      0% { transform: rotate(0deg); }
      100% { transform: rotate(360deg); }
    }
  </style>
</head>
<body>
  <div class="loader">
    <div class="spinner"></div>
    <p>Purchase successful! Redirecting...</p>
  </div>
  <script>
    localStorage.setItem('aurea_just_purchased', 'true');
    setTimeout(() => {
      window.location.href = '/thank-you?from_checkout=true';
    }, 500);
  </script>
</body>
</html>`
