// Package mapper converts persistence models to API response shapes.
package mapper

import (
	"github.com/vekst-crm/crm-api/internal/domain"
)

// ToBusinessResponse maps a business and its contact count to the API shape
func ToBusinessResponse(business *domain.Business, contactCount int) domain.BusinessResponse {
	tags := make([]string, 0, len(business.Tags))
	for _, tag := range business.Tags {
		tags = append(tags, tag.Name)
	}

	return domain.BusinessResponse{
		ID:            business.ID,
		Name:          business.Name,
		OrgNumber:     business.OrgNumber,
		Email:         business.Email,
		Phone:         business.Phone,
		Address:       business.Address,
		City:          business.City,
		PostalCode:    business.PostalCode,
		Country:       business.Country,
		ContactPerson: business.ContactPerson,
		Website:       business.Website,
		Industry:      business.Industry,
		EmployeeCount: business.EmployeeCount,
		Revenue:       business.Revenue,
		Notes:         business.Notes,
		Status:        string(business.Status),
		Stage:         string(business.Stage),
		Tags:          tags,
		ContactCount:  contactCount,
		CreatedAt:     business.CreatedAt,
		UpdatedAt:     business.UpdatedAt,
	}
}

// ToContactResponse maps a contact to the API shape
func ToContactResponse(contact *domain.Contact) domain.ContactResponse {
	return domain.ContactResponse{
		ID:         contact.ID,
		BusinessID: contact.BusinessID,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Email:      contact.Email,
		Phone:      contact.Phone,
		Title:      contact.Title,
		IsPrimary:  contact.IsPrimary,
		Notes:      contact.Notes,
		CreatedAt:  contact.CreatedAt,
		UpdatedAt:  contact.UpdatedAt,
	}
}

// ToActivityResponse maps an activity to the API shape
func ToActivityResponse(activity *domain.Activity) domain.ActivityResponse {
	return domain.ActivityResponse{
		ID:               activity.ID,
		Type:             string(activity.Type),
		Description:      activity.Description,
		OccurredAt:       activity.OccurredAt,
		Completed:        activity.Completed,
		Outcome:          activity.Outcome,
		BusinessID:       activity.BusinessID,
		ContactID:        activity.ContactID,
		JobApplicationID: activity.JobApplicationID,
		UserID:           activity.UserID,
		UserName:         activity.UserName,
		CreatedAt:        activity.CreatedAt,
	}
}

// ToOfferResponse maps an offer and its items to the API shape
func ToOfferResponse(offer *domain.Offer) domain.OfferResponse {
	items := make([]domain.OfferItemResponse, 0, len(offer.Items))
	for i := range offer.Items {
		item := &offer.Items[i]
		items = append(items, domain.OfferItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	return domain.OfferResponse{
		ID:         offer.ID,
		BusinessID: offer.BusinessID,
		ContactID:  offer.ContactID,
		Title:      offer.Title,
		Status:     string(offer.Status),
		Currency:   offer.Currency,
		Total:      offer.Total,
		Notes:      offer.Notes,
		ExpiresAt:  offer.ExpiresAt,
		SentAt:     offer.SentAt,
		Items:      items,
		CreatedAt:  offer.CreatedAt,
		UpdatedAt:  offer.UpdatedAt,
	}
}

// ToJobApplicationResponse maps a job application to the API shape
func ToJobApplicationResponse(application *domain.JobApplication) domain.JobApplicationResponse {
	skills := make([]string, 0, len(application.Skills))
	for _, skill := range application.Skills {
		skills = append(skills, skill.Skill)
	}

	return domain.JobApplicationResponse{
		ID:              application.ID,
		Name:            application.Name,
		Email:           application.Email,
		Phone:           application.Phone,
		DesiredPosition: application.DesiredPosition,
		CurrentEmployer: application.CurrentEmployer,
		Education:       application.Education,
		Notes:           application.Notes,
		Status:          string(application.Status),
		StatusLabel:     application.Status.Label(),
		Skills:          skills,
		CreatedAt:       application.CreatedAt,
		UpdatedAt:       application.UpdatedAt,
	}
}

// ToTicketResponse maps a ticket to the API shape
func ToTicketResponse(ticket *domain.Ticket, commentCount int) domain.TicketResponse {
	resp := domain.TicketResponse{
		ID:           ticket.ID,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Status:       string(ticket.Status),
		Priority:     string(ticket.Priority),
		BusinessID:   ticket.BusinessID,
		AssigneeID:   ticket.AssigneeID,
		CommentCount: commentCount,
		ResolvedAt:   ticket.ResolvedAt,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
	if ticket.Business != nil {
		resp.BusinessName = ticket.Business.Name
	}
	if ticket.Assignee != nil {
		resp.AssigneeName = ticket.Assignee.DisplayName
	}
	return resp
}

// ToTicketCommentResponse maps a ticket comment to the API shape
func ToTicketCommentResponse(comment *domain.TicketComment) domain.TicketCommentResponse {
	resp := domain.TicketCommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
	if comment.Author != nil {
		resp.AuthorName = comment.Author.DisplayName
	}
	return resp
}

// ToEmailProviderResponse maps a provider link to the API shape
func ToEmailProviderResponse(provider *domain.EmailProvider) domain.EmailProviderResponse {
	return domain.EmailProviderResponse{
		Provider:  string(provider.Provider),
		Email:     provider.Email,
		ExpiresAt: provider.ExpiresAt,
		LinkedAt:  provider.UpdatedAt,
	}
}

// ToSmsMessageResponse maps an SMS record to the API shape
func ToSmsMessageResponse(message *domain.SmsMessage) domain.SmsMessageResponse {
	return domain.SmsMessageResponse{
		ID:         message.ID,
		BusinessID: message.BusinessID,
		Recipient:  message.Recipient,
		Content:    message.Content,
		Status:     string(message.Status),
		CreatedAt:  message.CreatedAt,
	}
}

// ToUserResponse maps a user to the API shape
func ToUserResponse(user *domain.User) domain.UserResponse {
	return domain.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
	}
}

// ToWorkspaceResponse maps a workspace to the API shape
func ToWorkspaceResponse(workspace *domain.Workspace) domain.WorkspaceResponse {
	return domain.WorkspaceResponse{
		ID:   workspace.ID,
		Name: workspace.Name,
		Slug: workspace.Slug,
	}
}
