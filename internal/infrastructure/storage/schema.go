package storage

const applicationsTable = "applications"

var applicationColumns = []string{
	"application_id",
	"lead_applicant_name",
	"lead_applicant_email",
	"lead_applicant_address",
	"organisation_name",
	"summary",
	"amount_awarded",
	"research_area",
	"status",
	"submitted_date",
	"actioned_date",
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id BIGSERIAL PRIMARY KEY,
		application_id TEXT NOT NULL UNIQUE,
		lead_applicant_name TEXT,
		lead_applicant_email TEXT,
		lead_applicant_address TEXT,
		organisation_name TEXT,
		summary TEXT,
		amount_awarded INTEGER NOT NULL,
		research_area TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('submitted', 'approved', 'rejected')),
		submitted_date DATE NOT NULL,
		actioned_date DATE
	)`,
	`CREATE INDEX IF NOT EXISTS applications_status_idx ON applications (status)`,
	`CREATE INDEX IF NOT EXISTS applications_submitted_date_idx ON applications (submitted_date)`,
	`CREATE INDEX IF NOT EXISTS applications_actioned_date_idx ON applications (actioned_date)`,
}
