package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SystemUserID is the reserved identity used for auto-logged activities
// such as status-change audit notes
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SystemUserName is the display name of the reserved system actor
const SystemUserName = "System"

// Workspace is the tenant boundary; every scoped entity belongs to one
type Workspace struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	Slug string `gorm:"type:varchar(100);not null;unique"`
}

// User represents a user in the system
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Email       string     `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string     `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	WorkspaceID *uuid.UUID `gorm:"type:uuid;column:workspace_id;index" json:"workspaceId,omitempty"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	IsActive    bool       `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BusinessStatus represents the status of a business
type BusinessStatus string

const (
	BusinessStatusActive   BusinessStatus = "active"
	BusinessStatusInactive BusinessStatus = "inactive"
	BusinessStatusLead     BusinessStatus = "lead"
)

// IsValid checks if the BusinessStatus is a valid enum value
func (bs BusinessStatus) IsValid() bool {
	switch bs {
	case BusinessStatusActive, BusinessStatusInactive, BusinessStatusLead:
		return true
	}
	return false
}

// BusinessStage represents the lifecycle position in the sales pipeline
type BusinessStage string

const (
	BusinessStageLead      BusinessStage = "lead"
	BusinessStageProspect  BusinessStage = "prospect"
	BusinessStageQualified BusinessStage = "qualified"
	BusinessStageCustomer  BusinessStage = "customer"
	BusinessStageChurned   BusinessStage = "churned"
)

// IsValid checks if the BusinessStage is a valid enum value
func (bs BusinessStage) IsValid() bool {
	switch bs {
	case BusinessStageLead, BusinessStageProspect, BusinessStageQualified, BusinessStageCustomer, BusinessStageChurned:
		return true
	}
	return false
}

// LeadStages are the stages that count as open leads
var LeadStages = []BusinessStage{BusinessStageLead, BusinessStageProspect, BusinessStageQualified}

// Business represents a commercial entity in the CRM
type Business struct {
	BaseModel
	Name          string         `gorm:"type:varchar(200);not null;index"`
	OrgNumber     string         `gorm:"type:varchar(20);index;column:org_number"`
	Email         string         `gorm:"type:varchar(255)"`
	Phone         string         `gorm:"type:varchar(50)"`
	Address       string         `gorm:"type:varchar(500)"`
	City          string         `gorm:"type:varchar(100)"`
	PostalCode    string         `gorm:"type:varchar(20);column:postal_code"`
	Country       string         `gorm:"type:varchar(100);not null;default:'Norge'"`
	ContactPerson string         `gorm:"type:varchar(200);column:contact_person"`
	Website       string         `gorm:"type:varchar(500)"`
	Industry      string         `gorm:"type:varchar(100)"`
	EmployeeCount *int           `gorm:"column:employee_count"`
	Revenue       *float64       `gorm:"type:decimal(15,2)"`
	Notes         string         `gorm:"type:text"`
	Status        BusinessStatus `gorm:"type:varchar(50);not null;default:'lead';index"`
	Stage         BusinessStage  `gorm:"type:varchar(50);not null;default:'lead';index"`
	WorkspaceID   *uuid.UUID     `gorm:"type:uuid;column:workspace_id;index"`
	Workspace     *Workspace     `gorm:"foreignKey:WorkspaceID"`
	Tags          []Tag          `gorm:"many2many:business_tags"`
	Contacts      []Contact      `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
	Activities    []Activity     `gorm:"foreignKey:BusinessID"`
	Offers        []Offer        `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// Tag is a label attached to businesses, deduplicated by name
type Tag struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// Contact represents a person associated with exactly one business
type Contact struct {
	BaseModel
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index;column:business_id"`
	Business   *Business `gorm:"foreignKey:BusinessID"`
	FirstName  string    `gorm:"type:varchar(100);not null;column:first_name"`
	LastName   string    `gorm:"type:varchar(100);not null;column:last_name"`
	Email      string    `gorm:"type:varchar(255)"`
	Phone      string    `gorm:"type:varchar(50)"`
	Title      string    `gorm:"type:varchar(100)"`
	IsPrimary  bool      `gorm:"not null;default:false;column:is_primary"`
	Notes      string    `gorm:"type:text"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ActivityType represents the type of activity
type ActivityType string

const (
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeNote    ActivityType = "note"
)

// IsValid checks if the ActivityType is a valid enum value
func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityTypeCall, ActivityTypeMeeting, ActivityTypeEmail, ActivityTypeNote:
		return true
	}
	return false
}

// Activity is a timestamped log entry attached to a business, contact
// and/or job application. Append-only aside from completion and outcome.
type Activity struct {
	BaseModel
	Type             ActivityType `gorm:"type:varchar(50);not null;default:'note'"`
	Description      string       `gorm:"type:varchar(2000);not null"`
	OccurredAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	Completed        bool         `gorm:"not null;default:false"`
	Outcome          string       `gorm:"type:varchar(500)"`
	BusinessID       *uuid.UUID   `gorm:"type:uuid;index;column:business_id"`
	ContactID        *uuid.UUID   `gorm:"type:uuid;index;column:contact_id"`
	JobApplicationID *uuid.UUID   `gorm:"type:uuid;index;column:job_application_id"`
	UserID           uuid.UUID    `gorm:"type:uuid;not null;column:user_id"`
	UserName         string       `gorm:"type:varchar(200);column:user_name"`
}

// OfferStatus represents the lifecycle status of an offer
type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "draft"
	OfferStatusSent     OfferStatus = "sent"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

// IsValid checks if the OfferStatus is a valid enum value
func (os OfferStatus) IsValid() bool {
	switch os {
	case OfferStatusDraft, OfferStatusSent, OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired:
		return true
	}
	return false
}

// Offer represents a quote attached to a business
type Offer struct {
	BaseModel
	BusinessID uuid.UUID   `gorm:"type:uuid;not null;index;column:business_id"`
	Business   *Business   `gorm:"foreignKey:BusinessID"`
	ContactID  *uuid.UUID  `gorm:"type:uuid;column:contact_id"`
	Contact    *Contact    `gorm:"foreignKey:ContactID"`
	Title      string      `gorm:"type:varchar(200);not null"`
	Status     OfferStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Currency   string      `gorm:"type:varchar(3);not null;default:'NOK'"`
	Total      float64     `gorm:"type:decimal(15,2);not null;default:0"`
	Notes      string      `gorm:"type:text"`
	ExpiresAt  *time.Time  `gorm:"column:expires_at;index"`
	SentAt     *time.Time  `gorm:"column:sent_at"`
	Items      []OfferItem `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

// OfferItem represents a line item in an offer
type OfferItem struct {
	BaseModel
	OfferID     uuid.UUID `gorm:"type:uuid;not null;index;column:offer_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	LineTotal   float64   `gorm:"type:decimal(15,2);not null;column:line_total"`
}

// JobApplicationStatus represents where a candidate is in the hiring flow
type JobApplicationStatus string

const (
	JobApplicationStatusNew           JobApplicationStatus = "new"
	JobApplicationStatusReviewing     JobApplicationStatus = "reviewing"
	JobApplicationStatusInterviewed   JobApplicationStatus = "interviewed"
	JobApplicationStatusOfferExtended JobApplicationStatus = "offer_extended"
	JobApplicationStatusHired         JobApplicationStatus = "hired"
	JobApplicationStatusRejected      JobApplicationStatus = "rejected"
)

// IsValid checks if the JobApplicationStatus is a valid enum value
func (s JobApplicationStatus) IsValid() bool {
	switch s {
	case JobApplicationStatusNew, JobApplicationStatusReviewing, JobApplicationStatusInterviewed,
		JobApplicationStatusOfferExtended, JobApplicationStatusHired, JobApplicationStatusRejected:
		return true
	}
	return false
}

// Label returns the Norwegian display name for the status. Used as the
// description of the auto-logged activity on status changes.
func (s JobApplicationStatus) Label() string {
	switch s {
	case JobApplicationStatusNew:
		return "Ny"
	case JobApplicationStatusReviewing:
		return "Under vurdering"
	case JobApplicationStatusInterviewed:
		return "Intervjuet"
	case JobApplicationStatusOfferExtended:
		return "Tilbud sendt"
	case JobApplicationStatusHired:
		return "Ansatt"
	case JobApplicationStatusRejected:
		return "Avslått"
	}
	return string(s)
}

// JobApplication represents a candidate record
type JobApplication struct {
	BaseModel
	Name            string                `gorm:"type:varchar(200);not null;index"`
	Email           string                `gorm:"type:varchar(255);not null"`
	Phone           string                `gorm:"type:varchar(50)"`
	DesiredPosition string                `gorm:"type:varchar(200);column:desired_position"`
	CurrentEmployer string                `gorm:"type:varchar(200);column:current_employer"`
	Education       string                `gorm:"type:varchar(500)"`
	Notes           string                `gorm:"type:text"`
	Status          JobApplicationStatus  `gorm:"type:varchar(50);not null;default:'new';index"`
	WorkspaceID     *uuid.UUID            `gorm:"type:uuid;column:workspace_id;index"`
	Skills          []JobApplicationSkill `gorm:"foreignKey:JobApplicationID;constraint:OnDelete:CASCADE"`
	Activities      []Activity            `gorm:"foreignKey:JobApplicationID"`
}

// JobApplicationSkill is one skill owned by a job application.
// Skill values are stored lowercase so membership checks are exact.
type JobApplicationSkill struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	JobApplicationID uuid.UUID `gorm:"type:uuid;not null;index;column:job_application_id"`
	Skill            string    `gorm:"type:varchar(100);not null;index"`
}

func (s *JobApplicationSkill) TableName() string {
	return "job_application_skills"
}

func (s *JobApplicationSkill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TicketStatus represents the status of a support ticket
type TicketStatus string

const (
	TicketStatusUnassigned          TicketStatus = "unassigned"
	TicketStatusOpen                TicketStatus = "open"
	TicketStatusInProgress          TicketStatus = "in_progress"
	TicketStatusWaitingOnCustomer   TicketStatus = "waiting_on_customer"
	TicketStatusWaitingOnThirdParty TicketStatus = "waiting_on_third_party"
	TicketStatusResolved            TicketStatus = "resolved"
	TicketStatusClosed              TicketStatus = "closed"
)

// IsValid checks if the TicketStatus is a valid enum value
func (ts TicketStatus) IsValid() bool {
	switch ts {
	case TicketStatusUnassigned, TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingOnCustomer,
		TicketStatusWaitingOnThirdParty, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority represents the urgency of a support ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// IsValid checks if the TicketPriority is a valid enum value
func (tp TicketPriority) IsValid() bool {
	switch tp {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket represents a support case
type Ticket struct {
	BaseModel
	Subject     string          `gorm:"type:varchar(200);not null;index"`
	Description string          `gorm:"type:text"`
	Status      TicketStatus    `gorm:"type:varchar(50);not null;default:'unassigned';index"`
	Priority    TicketPriority  `gorm:"type:varchar(50);not null;default:'medium';index"`
	BusinessID  *uuid.UUID      `gorm:"type:uuid;index;column:business_id"`
	Business    *Business       `gorm:"foreignKey:BusinessID"`
	AssigneeID  *uuid.UUID      `gorm:"type:uuid;column:assignee_id;index"`
	Assignee    *User           `gorm:"foreignKey:AssigneeID"`
	WorkspaceID *uuid.UUID      `gorm:"type:uuid;column:workspace_id;index"`
	Comments    []TicketComment `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	Files       []File          `gorm:"foreignKey:TicketID"`
	ResolvedAt  *time.Time      `gorm:"column:resolved_at"`
}

// TicketComment is one comment on a ticket
type TicketComment struct {
	BaseModel
	TicketID uuid.UUID `gorm:"type:uuid;not null;index;column:ticket_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;column:author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID"`
	Body     string    `gorm:"type:varchar(4000);not null"`
}

// File represents an uploaded ticket attachment
type File struct {
	BaseModel
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique;column:storage_path"`
	TicketID    *uuid.UUID `gorm:"type:uuid;index;column:ticket_id"`
}

// MailProviderName identifies a supported email provider
type MailProviderName string

const (
	MailProviderGoogle    MailProviderName = "google"
	MailProviderMicrosoft MailProviderName = "microsoft"
)

// IsValid checks if the MailProviderName is a valid enum value
func (p MailProviderName) IsValid() bool {
	switch p {
	case MailProviderGoogle, MailProviderMicrosoft:
		return true
	}
	return false
}

// EmailProvider holds the linked mail provider for a user.
// Exactly one row per user; upserted, never duplicated.
type EmailProvider struct {
	BaseModel
	UserID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex;column:user_id"`
	Provider     MailProviderName `gorm:"type:varchar(50);not null"`
	Email        string           `gorm:"type:varchar(255);not null"`
	AccessToken  string           `gorm:"type:text;column:access_token"`
	RefreshToken string           `gorm:"type:text;column:refresh_token"`
	ExpiresAt    *time.Time       `gorm:"column:expires_at"`
}

// Account stores OAuth identity-provider tokens for a user.
// One row per (user, provider).
type Account struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_provider;column:user_id"`
	ProviderID   string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_accounts_user_provider;column:provider_id"`
	AccessToken  *string    `gorm:"type:text;column:access_token"`
	RefreshToken *string    `gorm:"type:text;column:refresh_token"`
	ExpiresAt    *time.Time `gorm:"column:expires_at"`
	Scope        string     `gorm:"type:varchar(1000)"`
}

// SmsStatus represents the delivery state of an outbound SMS
type SmsStatus string

const (
	SmsStatusQueued SmsStatus = "queued"
	SmsStatusSent   SmsStatus = "sent"
	SmsStatusFailed SmsStatus = "failed"
)

// SmsMessage is an outbound SMS sent to a business contact number
type SmsMessage struct {
	BaseModel
	BusinessID       uuid.UUID `gorm:"type:uuid;not null;index;column:business_id"`
	Business         *Business `gorm:"foreignKey:BusinessID"`
	Recipient        string    `gorm:"type:varchar(50);not null"`
	Content          string    `gorm:"type:varchar(1600);not null"`
	Status           SmsStatus `gorm:"type:varchar(50);not null;default:'queued';index"`
	GatewayMessageID string    `gorm:"type:varchar(100);column:gateway_message_id"`
	SenderID         uuid.UUID `gorm:"type:uuid;not null;column:sender_id"`
	ErrorDetail      string    `gorm:"type:varchar(500);column:error_detail"`
}
