package enums

import "fmt"

// StaffRole identifies what a staff account is allowed to operate.
type StaffRole string

const (
	StaffRoleAdmin          StaffRole = "ADMIN"
	StaffRoleShopStaff      StaffRole = "SHOP_STAFF"
	StaffRoleDeliveryStaff  StaffRole = "DELIVERY_STAFF"
	StaffRoleInventoryStaff StaffRole = "INVENTORY_STAFF"
	StaffRoleCustomer       StaffRole = "CUSTOMER"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleShopStaff,
	StaffRoleDeliveryStaff,
	StaffRoleInventoryStaff,
	StaffRoleCustomer,
}

// String implements fmt.Stringer.
func (s StaffRole) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StaffRole.
func (s StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
