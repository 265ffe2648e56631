package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/casedesk/casedesk-backend/pkg/enums"
)

// templateData carries every variable the email bodies can reference. All
// values pass through html/template escaping.
type templateData struct {
	Username     string
	Code         string
	OTP          string
	Subject      string
	Status       string
	StatusLower  string
	ReviewerName string
	Note         string
}

const layoutHTML = `
{{define "wrap"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; background-color: #f4f8fb; border-radius: 10px; border: 1px solid #dce6ec;">
  <div style="text-align: center; padding-bottom: 15px;">
    <h2 style="color: #2a9d8f; margin: 0;">{{.heading}}</h2>
  </div>
  <div style="background: white; padding: 20px; border-radius: 8px;">
    {{.body}}
  </div>
  <p style="text-align: center; color: #777; font-size: 13px; margin-top: 15px;">
    Best regards,<br><strong style="color: #2a9d8f;">CaseDesk Team</strong>
  </p>
</div>
{{end}}`

var bodyTemplates = template.Must(template.New("emails").Parse(`
{{define "user_registered"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">We're thrilled to have you on board. To get started, please verify your email address with the code below.</p>
<p style="font-weight: bold; font-size: 22px; text-align: center; letter-spacing: 3px;">{{.Code}}</p>
{{end}}

{{define "user_verification_resent"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">To fully access our features, please verify your email address with the code below.</p>
<p style="font-weight: bold; font-size: 22px; text-align: center; letter-spacing: 3px;">{{.Code}}</p>
{{end}}

{{define "user_email_verified"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">Welcome aboard! Your email has been successfully verified.</p>
{{end}}

{{define "user_password_reset_requested"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">You have requested to reset your password. Use the OTP below to proceed.</p>
<p style="font-weight: bold; font-size: 22px; text-align: center; letter-spacing: 3px;">{{.OTP}}</p>
<p style="color: #555; font-size: 15px;">If you did not request this, you can safely ignore this email.</p>
{{end}}

{{define "user_password_reset_completed"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">Your password has been successfully reset.</p>
<p style="color: #555; font-size: 15px;">If you did not perform this action, please contact support immediately.</p>
{{end}}

{{define "user_profile_updated"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">Your profile has been successfully updated.</p>
<p style="color: #555; font-size: 15px;">Thank you for keeping your information up-to-date.</p>
{{end}}

{{define "user_deleted"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">Your account has been successfully deleted. We're sorry to see you go.</p>
{{end}}

{{define "complaint_created"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">We have received your complaint with the subject:</p>
<p style="font-weight: bold; text-align: center;">{{.Subject}}</p>
<p style="color: #555; font-size: 15px;">Our team will review it and update you soon.</p>
{{end}}

{{define "complaint_assigned"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">Your complaint is now under review by our team.</p>
<p style="color: #555; font-size: 15px;">Reviewer: <strong>{{.ReviewerName}}</strong></p>
{{end}}

{{define "complaint_follow_up_added"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">There is a new update on your complaint:</p>
<blockquote style="border-left: 4px solid #2a9d8f; margin: 10px 0; padding-left: 10px;">{{.Note}}</blockquote>
{{end}}

{{define "complaint_status_updated"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">The status of your complaint has been updated to <strong>{{.Status}}</strong>.</p>
{{end}}

{{define "complaint_resolved"}}
<p style="color: #333; font-size: 16px;">Dear {{.Username}},</p>
<p style="color: #555; font-size: 15px;">Your complaint has been <strong>{{.StatusLower}}</strong>. Thank you for your patience.</p>
{{end}}
` + layoutHTML))

type renderedEmail struct {
	Subject string
	HTML    string
}

// render produces the subject line and HTML body for one event type.
func render(eventType enums.OutboxEventType, data templateData) (*renderedEmail, error) {
	data.StatusLower = strings.ToLower(data.Status)

	subject, heading, templateName := lookup(eventType, data)
	if templateName == "" {
		return nil, fmt.Errorf("no template for event type %q", eventType)
	}

	var body bytes.Buffer
	if err := bodyTemplates.ExecuteTemplate(&body, templateName, data); err != nil {
		return nil, fmt.Errorf("rendering %s body: %w", templateName, err)
	}

	var out bytes.Buffer
	err := bodyTemplates.ExecuteTemplate(&out, "wrap", map[string]any{
		"heading": heading,
		"body":    template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering %s layout: %w", templateName, err)
	}

	return &renderedEmail{Subject: subject, HTML: out.String()}, nil
}

func lookup(eventType enums.OutboxEventType, data templateData) (subject, heading, templateName string) {
	switch eventType {
	case enums.EventUserRegistered:
		return "Welcome to CaseDesk - Verify Your Email", "Welcome to CaseDesk!", "user_registered"
	case enums.EventUserVerificationResent:
		return "Verify Your Email Address", "Verify Your Email", "user_verification_resent"
	case enums.EventUserEmailVerified:
		return "Email Verification Successful", "Email Verification Successful!", "user_email_verified"
	case enums.EventUserPasswordResetRequested:
		return "Your OTP for Password Reset", "Password Reset Request", "user_password_reset_requested"
	case enums.EventUserPasswordResetCompleted:
		return "Password Reset Successful", "Password Reset Successful", "user_password_reset_completed"
	case enums.EventUserProfileUpdated:
		return "Profile Updated", "Profile Updated", "user_profile_updated"
	case enums.EventUserDeleted:
		return "Account Deletion Confirmation", "Account Deletion Confirmation", "user_deleted"
	case enums.EventComplaintCreated:
		return "Complaint Received", "Complaint Received", "complaint_created"
	case enums.EventComplaintAssigned:
		return "Your Complaint is Under Review", "Complaint Under Review", "complaint_assigned"
	case enums.EventComplaintFollowUpAdded:
		return "Update on Your Complaint", "Complaint Update", "complaint_follow_up_added"
	case enums.EventComplaintStatusUpdated:
		// Resolved and closed complaints get the wrap-up template.
		if data.Status == enums.ComplaintStatusResolved.String() || data.Status == enums.ComplaintStatusClosed.String() {
			return "Your Complaint Has Been Resolved", "Complaint Resolved", "complaint_resolved"
		}
		return "Complaint Status Update", "Complaint Status Update", "complaint_status_updated"
	default:
		return "", "", ""
	}
}
