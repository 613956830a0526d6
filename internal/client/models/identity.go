package models

// Identity is the signed-in account as reported by the server.
type Identity struct {
	ID       string
	Username string
	FullName string
	Email    string
}

// Profile is the member record created on onboarding.
type Profile struct {
	ID          string
	DisplayName string
	StudyYear   int
	Email       string
}

// Display turns the profile into the join attributes of an owned entry.
func (p *Profile) Display() *OwnerDisplay {
	if p == nil {
		return nil
	}
	return &OwnerDisplay{Name: p.DisplayName, StudyYear: p.StudyYear}
}
