package mail

// Template names. Each has a "<name>.subject" and "<name>.body" block.
const (
	TemplateOfferReceived         = "offer-received"
	TemplateOfferAccepted         = "offer-accepted"
	TemplateOfferRejected         = "offer-rejected"
	TemplateOfferExpiring         = "offer-expiring"
	TemplateOfferExpired          = "offer-expired"
	TemplateExtensionOffered      = "extension-offered"
	TemplateExtensionRejected     = "extension-rejected"
	TemplateTransferResponse      = "transfer-response"
	TemplateBenched               = "benched"
	TemplateKicked                = "kicked"
	TemplateContractExpired       = "contract-expired"
	TemplateSponsorshipAccepted   = "sponsorship-accepted"
	TemplateSponsorshipRejected   = "sponsorship-rejected"
	TemplateSponsorshipTerminated = "sponsorship-terminated"
	TemplateSponsorshipBonus      = "sponsorship-bonus"
	TemplateSponsorshipInvite     = "sponsorship-invite"
	TemplateCompetitionSummary    = "competition-summary"
	TemplateAward                 = "award"
	TemplateWelcome               = "welcome"
)

const templates = `
{{define "offer-received.subject"}}Offer from {{.Team}}{{end}}
{{define "offer-received.body"}}{{.Team}} want to sign {{.Player}} on a {{.Years}} year deal at {{.Wages}} a week.
The offer expires on {{.Expires}}.{{end}}

{{define "offer-accepted.subject"}}Welcome to {{.Team}}{{end}}
{{define "offer-accepted.body"}}{{.Player}} has signed with {{.Team}} until {{.ContractEnd}}.{{end}}

{{define "offer-rejected.subject"}}Offer declined{{end}}
{{define "offer-rejected.body"}}The move of {{.Player}} to {{.Team}} is off.{{end}}

{{define "offer-expiring.subject"}}Offer from {{.Team}} expires tomorrow{{end}}
{{define "offer-expiring.body"}}{{.Team}} are still waiting for an answer about {{.Player}}.{{end}}

{{define "offer-expired.subject"}}Offer from {{.Team}} expired{{end}}
{{define "offer-expired.body"}}{{.Team}} withdrew their offer for {{.Player}} after hearing nothing back.{{end}}

{{define "extension-offered.subject"}}Contract extension{{end}}
{{define "extension-offered.body"}}{{.Team}} would like to keep {{.Player}} for another {{.Years}} year(s) at {{.Wages}} a week.{{end}}

{{define "extension-rejected.subject"}}Contract extension declined{{end}}
{{define "extension-rejected.body"}}{{.Player}} will not be extending with {{.Team}}.{{end}}

{{define "transfer-response.subject"}}{{.Player}}: {{.Outcome}}{{end}}
{{define "transfer-response.body"}}Your offer for {{.Player}} was {{.Outcome}} by {{.Decider}}.{{end}}

{{define "benched.subject"}}Dropped to the bench{{end}}
{{define "benched.body"}}{{.Player}} has been benched by {{.Team}} and placed on the transfer list.{{end}}

{{define "kicked.subject"}}Released by {{.Team}}{{end}}
{{define "kicked.body"}}{{.Team}} have released {{.Player}}. They are now a free agent.{{end}}

{{define "contract-expired.subject"}}Contract expired{{end}}
{{define "contract-expired.body"}}The contract between {{.Player}} and {{.Team}} has run out.{{end}}

{{define "sponsorship-accepted.subject"}}{{.Sponsor}} on board{{end}}
{{define "sponsorship-accepted.body"}}{{.Sponsor}} will pay {{.Team}} {{.Amount}} {{.Frequency}} until {{.End}}.{{end}}

{{define "sponsorship-rejected.subject"}}{{.Sponsor}} passed{{end}}
{{define "sponsorship-rejected.body"}}{{.Sponsor}} decided not to sponsor {{.Team}}.{{end}}

{{define "sponsorship-terminated.subject"}}{{.Sponsor}} pulled out{{end}}
{{define "sponsorship-terminated.body"}}{{.Team}} missed the terms of the {{.Sponsor}} deal, which has been terminated.{{end}}

{{define "sponsorship-bonus.subject"}}{{.Sponsor}} bonus{{end}}
{{define "sponsorship-bonus.body"}}{{.Sponsor}} paid {{.Team}} a bonus of {{.Amount}}.{{end}}

{{define "sponsorship-invite.subject"}}{{.Sponsor}} want to renew{{end}}
{{define "sponsorship-invite.body"}}{{.Sponsor}} offer {{.Team}} {{.Amount}} {{.Frequency}} until {{.End}}.{{end}}

{{define "competition-summary.subject"}}{{.Competition}} finished{{end}}
{{define "competition-summary.body"}}{{.Team}} finished {{.Position}} of {{.Size}} with {{.Win}} wins, {{.Loss}} losses and {{.Draw}} draws.{{end}}

{{define "award.subject"}}{{.Competition}} champions!{{end}}
{{define "award.body"}}{{.Team}} won {{.Competition}} and took home {{.Prize}}.{{end}}

{{define "welcome.subject"}}Welcome{{end}}
{{define "welcome.body"}}Season {{.Season}} starts on {{.Date}}. Good luck.{{end}}
`
