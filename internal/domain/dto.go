package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps list responses with paging metadata
type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// CreateBusinessRequest is the payload for creating a business
type CreateBusinessRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	OrgNumber     string   `json:"orgNumber" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Phone         string   `json:"phone" validate:"omitempty,max=50"`
	Address       string   `json:"address" validate:"omitempty,max=500"`
	City          string   `json:"city" validate:"omitempty,max=100"`
	PostalCode    string   `json:"postalCode" validate:"omitempty,max=20"`
	Country       string   `json:"country" validate:"omitempty,max=100"`
	ContactPerson string   `json:"contactPerson" validate:"omitempty,max=200"`
	Website       string   `json:"website" validate:"omitempty,max=500"`
	Industry      string   `json:"industry" validate:"omitempty,max=100"`
	EmployeeCount *int     `json:"employeeCount" validate:"omitempty,min=0"`
	Revenue       *float64 `json:"revenue" validate:"omitempty,min=0"`
	Notes         string   `json:"notes"`
	Status        string   `json:"status" validate:"omitempty,oneof=active inactive lead"`
	Stage         string   `json:"stage" validate:"omitempty,oneof=lead prospect qualified customer churned"`
	Tags          []string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
}

// UpdateBusinessRequest is the payload for updating a business.
// Nil fields are left unchanged.
type UpdateBusinessRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=200"`
	OrgNumber     *string   `json:"orgNumber" validate:"omitempty,max=20"`
	Email         *string   `json:"email" validate:"omitempty,email"`
	Phone         *string   `json:"phone" validate:"omitempty,max=50"`
	Address       *string   `json:"address" validate:"omitempty,max=500"`
	City          *string   `json:"city" validate:"omitempty,max=100"`
	PostalCode    *string   `json:"postalCode" validate:"omitempty,max=20"`
	Country       *string   `json:"country" validate:"omitempty,max=100"`
	ContactPerson *string   `json:"contactPerson" validate:"omitempty,max=200"`
	Website       *string   `json:"website" validate:"omitempty,max=500"`
	Industry      *string   `json:"industry" validate:"omitempty,max=100"`
	EmployeeCount *int      `json:"employeeCount" validate:"omitempty,min=0"`
	Revenue       *float64  `json:"revenue" validate:"omitempty,min=0"`
	Notes         *string   `json:"notes"`
	Status        *string   `json:"status" validate:"omitempty,oneof=active inactive lead"`
	Stage         *string   `json:"stage" validate:"omitempty,oneof=lead prospect qualified customer churned"`
	Tags          *[]string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
}

// BusinessListParams are the supported filters for listing businesses
type BusinessListParams struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	Stage     string
	Industry  string
	OnlyLeads bool
	SortBy    string
	SortDir   string
}

// BusinessResponse is the API shape of a business
type BusinessResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	OrgNumber     string    `json:"orgNumber,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	PostalCode    string    `json:"postalCode,omitempty"`
	Country       string    `json:"country,omitempty"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Website       string    `json:"website,omitempty"`
	Industry      string    `json:"industry,omitempty"`
	EmployeeCount *int      `json:"employeeCount,omitempty"`
	Revenue       *float64  `json:"revenue,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	Stage         string    `json:"stage"`
	Tags          []string  `json:"tags"`
	ContactCount  int       `json:"contactCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateContactRequest is the payload for adding a contact to a business
type CreateContactRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Title     string `json:"title" validate:"omitempty,max=100"`
	IsPrimary bool   `json:"isPrimary"`
	Notes     string `json:"notes"`
}

// UpdateContactRequest is the payload for updating a contact
type UpdateContactRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Title     *string `json:"title" validate:"omitempty,max=100"`
	IsPrimary *bool   `json:"isPrimary"`
	Notes     *string `json:"notes"`
}

// ContactResponse is the API shape of a contact
type ContactResponse struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"businessId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Title      string    `json:"title,omitempty"`
	IsPrimary  bool      `json:"isPrimary"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateActivityRequest is the payload for logging an activity
type CreateActivityRequest struct {
	Type             string     `json:"type" validate:"required,oneof=call meeting email note"`
	Description      string     `json:"description" validate:"required,min=1,max=2000"`
	OccurredAt       *time.Time `json:"occurredAt"`
	BusinessID       *uuid.UUID `json:"businessId"`
	ContactID        *uuid.UUID `json:"contactId"`
	JobApplicationID *uuid.UUID `json:"jobApplicationId"`
}

// UpdateActivityRequest marks completion or records an outcome
type UpdateActivityRequest struct {
	Completed *bool   `json:"completed"`
	Outcome   *string `json:"outcome" validate:"omitempty,max=500"`
}

// ActivityResponse is the API shape of an activity
type ActivityResponse struct {
	ID               uuid.UUID  `json:"id"`
	Type             string     `json:"type"`
	Description      string     `json:"description"`
	OccurredAt       time.Time  `json:"occurredAt"`
	Completed        bool       `json:"completed"`
	Outcome          string     `json:"outcome,omitempty"`
	BusinessID       *uuid.UUID `json:"businessId,omitempty"`
	ContactID        *uuid.UUID `json:"contactId,omitempty"`
	JobApplicationID *uuid.UUID `json:"jobApplicationId,omitempty"`
	UserID           uuid.UUID  `json:"userId"`
	UserName         string     `json:"userName,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// OfferItemRequest is one line item in an offer payload
type OfferItemRequest struct {
	Description string  `json:"description" validate:"required,min=1,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

// CreateOfferRequest is the payload for creating an offer
type CreateOfferRequest struct {
	BusinessID uuid.UUID          `json:"businessId" validate:"required"`
	ContactID  *uuid.UUID         `json:"contactId"`
	Title      string             `json:"title" validate:"required,min=1,max=200"`
	Currency   string             `json:"currency" validate:"omitempty,len=3"`
	Notes      string             `json:"notes"`
	ExpiresAt  *time.Time         `json:"expiresAt"`
	Items      []OfferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOfferRequest is the payload for updating a draft offer
type UpdateOfferRequest struct {
	Title     *string             `json:"title" validate:"omitempty,min=1,max=200"`
	ContactID *uuid.UUID          `json:"contactId"`
	Currency  *string             `json:"currency" validate:"omitempty,len=3"`
	Notes     *string             `json:"notes"`
	ExpiresAt *time.Time          `json:"expiresAt"`
	Items     *[]OfferItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// OfferItemResponse is the API shape of an offer line item
type OfferItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	LineTotal   float64   `json:"lineTotal"`
}

// OfferResponse is the API shape of an offer
type OfferResponse struct {
	ID         uuid.UUID           `json:"id"`
	BusinessID uuid.UUID           `json:"businessId"`
	ContactID  *uuid.UUID          `json:"contactId,omitempty"`
	Title      string              `json:"title"`
	Status     string              `json:"status"`
	Currency   string              `json:"currency"`
	Total      float64             `json:"total"`
	Notes      string              `json:"notes,omitempty"`
	ExpiresAt  *time.Time          `json:"expiresAt,omitempty"`
	SentAt     *time.Time          `json:"sentAt,omitempty"`
	Items      []OfferItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// CreateJobApplicationRequest is the payload for registering a candidate
type CreateJobApplicationRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"omitempty,max=50"`
	DesiredPosition string   `json:"desiredPosition" validate:"omitempty,max=200"`
	CurrentEmployer string   `json:"currentEmployer" validate:"omitempty,max=200"`
	Education       string   `json:"education" validate:"omitempty,max=500"`
	Notes           string   `json:"notes"`
	Skills          []string `json:"skills" validate:"omitempty,dive,min=1,max=100"`
}

// UpdateJobApplicationRequest is the payload for updating a candidate
type UpdateJobApplicationRequest struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Email           *string   `json:"email" validate:"omitempty,email"`
	Phone           *string   `json:"phone" validate:"omitempty,max=50"`
	DesiredPosition *string   `json:"desiredPosition" validate:"omitempty,max=200"`
	CurrentEmployer *string   `json:"currentEmployer" validate:"omitempty,max=200"`
	Education       *string   `json:"education" validate:"omitempty,max=500"`
	Notes           *string   `json:"notes"`
	Skills          *[]string `json:"skills" validate:"omitempty,dive,min=1,max=100"`
}

// UpdateJobApplicationStatusRequest moves a candidate through the pipeline
type UpdateJobApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new reviewing interviewed offer_extended hired rejected"`
}

// JobApplicationListParams are the supported filters for listing candidates
type JobApplicationListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Skill    string
	SortBy   string
	SortDir  string
}

// JobApplicationResponse is the API shape of a job application
type JobApplicationResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	DesiredPosition string    `json:"desiredPosition,omitempty"`
	CurrentEmployer string    `json:"currentEmployer,omitempty"`
	Education       string    `json:"education,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	StatusLabel     string    `json:"statusLabel"`
	Skills          []string  `json:"skills"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateTicketRequest is the payload for opening a support ticket
type CreateTicketRequest struct {
	Subject     string     `json:"subject" validate:"required,min=1,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	BusinessID  *uuid.UUID `json:"businessId"`
	AssigneeID  *uuid.UUID `json:"assigneeId"`
}

// UpdateTicketRequest is the payload for updating a ticket
type UpdateTicketRequest struct {
	Subject     *string    `json:"subject" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=unassigned open in_progress waiting_on_customer waiting_on_third_party resolved closed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *uuid.UUID `json:"assigneeId"`
}

// CreateTicketCommentRequest adds a comment to a ticket
type CreateTicketCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// TicketCommentResponse is the API shape of a ticket comment
type TicketCommentResponse struct {
	ID         uuid.UUID `json:"id"`
	TicketID   uuid.UUID `json:"ticketId"`
	AuthorID   uuid.UUID `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TicketResponse is the API shape of a ticket
type TicketResponse struct {
	ID           uuid.UUID  `json:"id"`
	Subject      string     `json:"subject"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	BusinessID   *uuid.UUID `json:"businessId,omitempty"`
	BusinessName string     `json:"businessName,omitempty"`
	AssigneeID   *uuid.UUID `json:"assigneeId,omitempty"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	CommentCount int        `json:"commentCount"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TicketDetailResponse is a ticket together with its comment thread
type TicketDetailResponse struct {
	Ticket   TicketResponse          `json:"ticket"`
	Comments []TicketCommentResponse `json:"comments"`
}

// FileResponse is the API shape of a ticket attachment
type FileResponse struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TicketListParams are the supported filters for listing tickets
type TicketListParams struct {
	Page       int
	PageSize   int
	Search     string
	Status     string
	Priority   string
	AssigneeID *uuid.UUID
	BusinessID *uuid.UUID
	SortBy     string
	SortDir    string
}

// SaveEmailProviderRequest links a mail provider to the current user
type SaveEmailProviderRequest struct {
	Provider     string     `json:"provider" validate:"required,oneof=google microsoft"`
	AccessToken  string     `json:"accessToken" validate:"required"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

// ProviderResult is the outcome of a mail provider operation.
// Failures expected in normal operation (bad token, provider
// rejection) are reported here rather than as errors.
type ProviderResult struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EmailProviderResponse is the API shape of a linked provider
type EmailProviderResponse struct {
	Provider  string     `json:"provider"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	LinkedAt  time.Time  `json:"linkedAt"`
}

// SendSmsRequest sends a text message to a business contact number
type SendSmsRequest struct {
	BusinessID uuid.UUID `json:"businessId" validate:"required"`
	Recipient  string    `json:"recipient" validate:"omitempty,e164"`
	Content    string    `json:"content" validate:"required,min=1,max=1600"`
}

// SmsMessageResponse is the API shape of a sent SMS
type SmsMessageResponse struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"businessId"`
	Recipient  string    `json:"recipient"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserResponse is the API shape of a user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// WorkspaceResponse is the API shape of a workspace
type WorkspaceResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// MeResponse is the authenticated user together with their workspace
type MeResponse struct {
	User      UserResponse       `json:"user"`
	Workspace *WorkspaceResponse `json:"workspace,omitempty"`
}

// HealthResponse reports service and database health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}
