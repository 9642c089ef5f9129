package permissions

import (
	"strings"

	"github.com/fulluproar/commerce-backend/pkg/enums"
)

// adminSections maps each admin UI section key to its acceptable permission
// alternatives. An entry is "resource" (implicit read) or "resource:action";
// access requires any one alternative to pass.
var adminSections = map[string][]string{
	"dashboard":    {"admin"},
	"products":     {"products"},
	"inventory":    {"products", "orders:update"},
	"orders":       {"orders"},
	"customers":    {"customers"},
	"users":        {"users"},
	"marketing":    {"marketing"},
	"finance":      {"finance"},
	"hr":           {"hr"},
	"content":      {"content"},
	"integrations": {"integrations"},
	"system":       {"system"},
}

// CanAccessAdminSection reports whether any of the section's permission
// alternatives is granted. Unknown section keys deny.
func CanAccessAdminSection(roles []enums.Role, sectionKey string, actorEmail string) bool {
	alternatives, ok := adminSections[sectionKey]
	if !ok {
		return false
	}
	for _, alternative := range alternatives {
		resource, action := parseAlternative(alternative)
		if HasPermission(roles, resource, action, actorEmail) {
			return true
		}
	}
	return false
}

// SectionKeys returns the known admin section keys.
func SectionKeys() []string {
	keys := make([]string, 0, len(adminSections))
	for key := range adminSections {
		keys = append(keys, key)
	}
	return keys
}

func parseAlternative(alternative string) (Resource, Action) {
	parts := strings.SplitN(alternative, ":", 2)
	resource := Resource(parts[0])
	if len(parts) == 2 && parts[1] != "" {
		return resource, Action(parts[1])
	}
	return resource, ActionRead
}
