package auth

import (
	"fmt"
	"go-qa-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies ensures that the application has a baseline set of
// route authorization rules. It checks if each default policy exists before
// adding it, making the operation idempotent and safe to run on every
// application start.
//
// Requests are enforced against the requester's role: "anonymous" for
// unauthenticated sessions, "member" for signed-in users. Writes are
// POST-only, mirroring the read/write split of the routes.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	policies := [][]string{
		// Anyone can browse questions, tag listings and SEO endpoints, and
		// reach the login flow.
		{"anonymous", "/", "GET"},
		{"anonymous", "/questions", "GET"},
		{"anonymous", "/questions/*", "GET"},
		{"anonymous", "/robots.txt", "GET"},
		{"anonymous", "/sitemap.xml", "GET"},
		{"anonymous", "/static/*", "GET"},
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/callback", "GET"},

		// Members can additionally ask, answer, edit, and act on content.
		// Ownership of individual entities is checked by auth.Can in the
		// services, not here.
		{"member", "/ask", "GET"},
		{"member", "/ask", "POST"},
		{"member", "/questions/*", "POST"},
		{"member", "/answers/*", "GET"},
		{"member", "/answers/*", "POST"},
		{"member", "/auth/logout", "GET"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Members can do everything anonymous visitors can.
	if has, _ := e.HasRoleForUser("member", "anonymous"); !has {
		if _, err := e.AddRoleForUser("member", "anonymous"); err != nil {
			log.Error(err, "Failed to add role 'member' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
