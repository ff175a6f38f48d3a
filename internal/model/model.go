package model

// Role is the closed set of admin account roles. Every administrative
// endpoint on the upstream API requires RoleAdmin; the other values are
// authenticated but unprivileged (or only assignable, never required).
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleSuperadmin Role = "superadmin"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleAdmin, RoleModerator, RoleSuperadmin:
		return Role(value), true
	default:
		return "", false
	}
}

// Admin is the authenticated principal as the rest of the gateway sees it.
// It is always re-derived from a validated access token or from the
// upstream /auth/me endpoint, never stored on its own.
type Admin struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AuthTokens is the bearer token pair issued by the upstream API. The
// field names match the upstream wire format.
type AuthTokens struct {
	AccessToken  string `json:"adminAccessToken"`
	RefreshToken string `json:"adminRefreshToken"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Student is one roster row, including the purchase/analytics projection
// the dashboard drills into.
type Student struct {
	UserID           int     `json:"userId"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	FullName         string  `json:"fullName"`
	Gender           string  `json:"gender"`
	RegisteredAt     string  `json:"registeredAt"`
	LastUpdated      string  `json:"lastUpdated"`
	ProfileCompleted bool    `json:"profileCompleted"`
	TotalOrders      string  `json:"totalOrders"`
	TotalSpent       float64 `json:"totalSpent"`
	LastOrderDate    *string `json:"lastOrderDate"`
	HasPurchases     bool    `json:"hasPurchases"`
	Currency         string  `json:"currency"`
}

type StudentsData struct {
	Users                     []Student  `json:"users"`
	TotalUsers                int        `json:"totalUsers"`
	UsersWithCompleteProfiles int        `json:"usersWithCompleteProfiles"`
	Pagination                Pagination `json:"pagination"`
}

// ExamAttempt is one entrance-exam attempt awaiting or carrying a grade.
type ExamAttempt struct {
	AttemptID     int      `json:"attemptId"`
	ExamID        int      `json:"examId"`
	ExamTitle     string   `json:"examTitle"`
	Course        string   `json:"course"`
	Year          string   `json:"year"`
	AttemptNumber int      `json:"attemptNumber"`
	DateTime      string   `json:"dateTime"`
	UserID        int      `json:"userId"`
	Username      string   `json:"username"`
	FullName      string   `json:"fullName"`
	Email         string   `json:"email"`
	Status        string   `json:"status"`
	GradedAt      *string  `json:"gradedAt"`
	GradedBy      *string  `json:"gradedBy"`
	TotalMarks    *float64 `json:"totalMarks"`
	VideoURL      *string  `json:"videoUrl"`
}

// GradeRequest is the grading payload sent to the upstream API. Feedback
// and marks are optional; whether marks may be omitted is a deployment
// policy, not a hard rule.
type GradeRequest struct {
	AttemptID int      `json:"attemptId"`
	Passed    bool     `json:"passed"`
	Feedback  *string  `json:"feedback,omitempty"`
	Marks     *float64 `json:"marks,omitempty"`
}

type GradeResult struct {
	AttemptID int     `json:"attemptId"`
	Passed    bool    `json:"passed"`
	Feedback  string  `json:"feedback"`
	Marks     float64 `json:"marks"`
	GradedAt  string  `json:"gradedAt"`
	GradedBy  int     `json:"gradedBy"`
}
