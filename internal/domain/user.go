package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type Education struct {
	University     string `json:"university"`
	Degree         string `json:"degree"`
	GraduationYear int    `json:"graduationYear,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

type User struct {
	ID            string       `json:"_id"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"`
	FullName      string       `json:"fullName"`
	Role          Role         `json:"role"`
	Bio           string       `json:"bio"`
	Skills        []string     `json:"skills"`
	Education     Education    `json:"education"`
	Experience    []Experience `json:"experience"`
	PortfolioLink string       `json:"portfolioLink"`
	ResumeLink    string       `json:"resumeLink"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Applicant is the subset of a user shown to admins next to a listing.
type Applicant struct {
	ID            string       `json:"_id"`
	Email         string       `json:"email"`
	FullName      string       `json:"fullName"`
	Skills        []string     `json:"skills"`
	Education     Education    `json:"education"`
	Experience    []Experience `json:"experience"`
	PortfolioLink string       `json:"portfolioLink"`
	ResumeLink    string       `json:"resumeLink"`
}

func (u User) Applicant() Applicant {
	return Applicant{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Skills:        u.Skills,
		Education:     u.Education,
		Experience:    u.Experience,
		PortfolioLink: u.PortfolioLink,
		ResumeLink:    u.ResumeLink,
	}
}
