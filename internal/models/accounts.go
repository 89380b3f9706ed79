package models

const RoleCustomer = "customer"

func (c Customer) AccountID() string       { return c.ID }
func (c Customer) AccountEmail() string    { return c.Email }
func (c Customer) AccountPassword() string { return c.Password }
func (c Customer) AccountName() string     { return c.Name }
func (c Customer) AccountRole() string     { return RoleCustomer }

func (a AdminUser) AccountID() string       { return a.ID }
func (a AdminUser) AccountEmail() string    { return a.Email }
func (a AdminUser) AccountPassword() string { return a.Password }
func (a AdminUser) AccountName() string     { return a.Name }

func (a AdminUser) AccountRole() string {
	if a.Role == "" {
		return RoleAdmin
	}
	return a.Role
}
