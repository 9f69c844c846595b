package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityCustomer                      // Customer session required
	SecurityStaff                         // Staff session required
)

// EndpointSecurityConfig maps HTTP route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.signup":      SecurityPublic,
	"auth.login":       SecurityPublic,
	"auth.saved_email": SecurityPublic,

	// Catalog and funnel - Public
	"cars.list":     SecurityPublic,
	"cars.get":      SecurityPublic,
	"quotes.create": SecurityPublic,
	"checkout.get":  SecurityPublic,

	// Customer
	"bookings.create":    SecurityCustomer,
	"me.bookings.list":   SecurityCustomer,
	"me.bookings.return": SecurityCustomer,
	"me.bookings.cancel": SecurityCustomer,
	"me.bookings.extend": SecurityCustomer,
	"me.bookings.modify": SecurityCustomer,
	"me.bookings.export": SecurityCustomer,
	"me.account.get":     SecurityCustomer,
	"me.account.delete":  SecurityCustomer,
	"me.damage.list":     SecurityCustomer,
	"me.damage.pay":      SecurityCustomer,

	// Staff
	"admin.dashboard":        SecurityStaff,
	"admin.dashboard.ws":     SecurityStaff,
	"admin.users.list":       SecurityStaff,
	"admin.users.delete":     SecurityStaff,
	"admin.bookings.return":  SecurityStaff,
	"admin.inspections.list": SecurityStaff,
	"admin.bookings.inspect": SecurityStaff,
	"admin.bookings.refund":  SecurityStaff,
	"admin.reset":            SecurityStaff,
	"admin.reports.monthly":  SecurityStaff,
}

// GetSecurityLevel returns the security level for a route. Unknown routes
// require a staff session.
func GetSecurityLevel(route string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[route]; ok {
		return level
	}
	return SecurityStaff
}
