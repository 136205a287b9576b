package integration

import "time"

// Integration links one external gaming-service account. Records are keyed by
// service name: a second upsert for the same service replaces the first.
type Integration struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	Service     string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"service"`
	Username    string    `gorm:"type:varchar(128);not null" json:"username"`
	ConnectedAt time.Time `json:"connectedAt"`
}

func (Integration) TableName() string { return "integrations" }

const ServiceSteam = "steam"

// allowedServices is ordered for error messages.
var allowedServices = []string{ServiceSteam, "epic", "playstation", "xbox"}

func validService(service string) bool {
	for _, s := range allowedServices {
		if s == service {
			return true
		}
	}
	return false
}
