package routes

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/config"
)

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    :root {
      color-scheme: light;
      --bg: #f6f7f4;
      --panel: #ffffff;
      --text: #132019;
      --muted: #536258;
      --accent: #1f6f4a;
      --border: #d8ddd6;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: Georgia, "Times New Roman", serif;
      color: var(--text);
      background: linear-gradient(180deg, #fcfcfa 0%, var(--bg) 100%);
    }
    main {
      max-width: 960px;
      margin: 0 auto;
      padding: 48px 20px 64px;
    }
    .hero, .panel {
      background: var(--panel);
      border: 1px solid var(--border);
      border-radius: 18px;
      box-shadow: 0 20px 60px rgba(19, 32, 25, 0.08);
      padding: 28px;
      margin-bottom: 24px;
    }
    h1 { margin-top: 0; }
    h2 { color: var(--accent); border-bottom: 1px solid var(--border); padding-bottom: 6px; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid var(--border); font-size: 15px; }
    th { color: var(--muted); font-weight: normal; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 14px; }
    .muted { color: var(--muted); }
  </style>
</head>
<body>
  <main>
    <section class="hero">
      <h1>{{ .Title }}</h1>
      <p>Every endpoint lives under <code>/api</code>. All routes except register and login require a bearer token; the <em>Access</em> column names the narrowest role that may call the route. This page is a development-only surface.</p>
      <p class="muted">Rendered {{ .LoadedAt }}</p>
    </section>
    {{ range .Groups }}
    <section class="panel">
      <h2>{{ .Name }}</h2>
      <table>
        <tr><th>Method</th><th>Path</th><th>Access</th><th>Description</th></tr>
        {{ range .Endpoints }}
        <tr>
          <td><code>{{ .Method }}</code></td>
          <td><code>{{ .Path }}</code></td>
          <td>{{ .Access }}</td>
          <td>{{ .Description }}</td>
        </tr>
        {{ end }}
      </table>
    </section>
    {{ end }}
  </main>
</body>
</html>
`

type docsEndpoint struct {
	Method      string
	Path        string
	Access      string
	Description string
}

type docsGroup struct {
	Name      string
	Endpoints []docsEndpoint
}

type docsPageData struct {
	Title    string
	LoadedAt string
	Groups   []docsGroup
}

var docsGroups = []docsGroup{
	{
		Name: "Auth",
		Endpoints: []docsEndpoint{
			{"POST", "/api/auth/register", "public", "Create a parent account and return a token"},
			{"POST", "/api/auth/login", "public", "Exchange credentials for a token"},
			{"GET", "/api/auth/me", "any", "Current user for the presented token"},
		},
	},
	{
		Name: "Users & Students",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/users/profile", "any", "Own profile"},
			{"PUT", "/api/v1/users/profile", "any", "Update name fields"},
			{"POST", "/api/v1/users/profile/avatar", "any", "Upload avatar image (multipart, field avatar)"},
			{"POST", "/api/v1/users/verify/email", "any", "Mark own email verified"},
			{"POST", "/api/v1/users", "owner", "Provision an admin or teacher account"},
			{"POST", "/api/v1/students", "parent", "Create a child student account"},
			{"GET", "/api/v1/students", "parent/staff", "Own children, or the full roster for staff"},
			{"GET", "/api/v1/students/:id/progress", "parent/student/staff", "Per-program completion summary"},
			{"POST", "/api/v1/students/:id/progress", "student/staff", "Mark or clear a topic completion"},
		},
	},
	{
		Name: "Catalog",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/locations", "any", "List locations"},
			{"POST", "/api/v1/locations", "staff", "Create a location"},
			{"GET", "/api/v1/offerings", "any", "List offerings"},
			{"GET", "/api/v1/offerings/:id", "any", "Offering with plans or programs per its kind"},
			{"POST", "/api/v1/offerings", "staff", "Create an offering (kind subscription or program)"},
			{"POST", "/api/v1/offerings/:id/plans", "staff", "Attach a plan to a subscription offering"},
			{"GET", "/api/v1/programs/:id", "any", "Program with its module and topic tree"},
			{"GET", "/api/v1/programs/:id/topics", "any", "Flat topic list ordered by module"},
			{"POST", "/api/v1/programs", "staff", "Create a program under a program offering"},
			{"POST", "/api/v1/programs/:id/modules", "staff", "Add a module"},
			{"POST", "/api/v1/programs/topics", "staff", "Add a topic to a module"},
		},
	},
	{
		Name: "Scheduling",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/class-sessions", "any", "Weekly slots, filterable by location_id"},
			{"POST", "/api/v1/class-sessions", "staff", "Create a weekly slot"},
			{"PUT", "/api/v1/class-sessions/:id/capacity", "staff", "Edit capacity; held seats survive"},
			{"GET", "/api/v1/schedules", "any", "Dated schedules, paginated, filterable"},
			{"POST", "/api/v1/schedules", "staff", "Create a dated schedule for a plan or program"},
			{"PUT", "/api/v1/schedules/:id", "staff", "Edit date, location, or class session"},
			{"PUT", "/api/v1/schedules/:id/capacity", "staff", "Edit capacity; held seats survive"},
			{"DELETE", "/api/v1/schedules/:id", "staff", "Delete; rejected while students are enrolled"},
		},
	},
	{
		Name: "Enrollment & Payments",
		Endpoints: []docsEndpoint{
			{"POST", "/api/v1/enrollments", "parent", "Enroll a student; takes a seat, status pending_payment"},
			{"GET", "/api/v1/enrollments", "any", "Own enrollments; all for staff"},
			{"POST", "/api/v1/enrollments/:id/process-payment", "parent/staff", "Charge the card, or return a PayPal approval_url"},
			{"POST", "/api/v1/enrollments/:id/capture", "parent/staff", "Capture an approved PayPal order"},
			{"POST", "/api/v1/enrollments/:id/cancel", "parent/staff", "Cancel and release the seat"},
			{"GET", "/api/v1/enrollments/:id/payments", "parent/staff", "Payment history"},
			{"POST", "/api/v1/payment-methods", "any", "Register a tokenized card"},
			{"PUT", "/api/v1/payment-methods/:id/default", "any", "Make a stored card the default"},
			{"GET", "/api/v1/discount-codes/validate", "any", "Check a code before enrolling"},
		},
	},
	{
		Name: "Realtime",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/ws", "any", "WebSocket seat-availability feed; subscribe per schedule_id"},
		},
	},
}

func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:    "School Portal API Docs",
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
		Groups:   docsGroups,
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}

		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/", indexHandler)

	return nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
