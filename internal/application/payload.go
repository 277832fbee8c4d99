package application

import "github.com/jdewinter/leadsync/internal/domain/model"

// fallbackCompanyName is sent when a business lead has no company on record.
const fallbackCompanyName = "ZohoCRM"

// buildLeadPayload maps a CRM lead onto the destination's field names.
// The primary phone wins over the mobile number when both are present, the
// business flag derives from company presence, and empty fields are dropped
// entirely rather than sent as "".
func buildLeadPayload(lead model.Lead) map[string]string {
	phone := lead.Phone
	if phone == "" {
		phone = lead.Mobile
	}

	business := "0"
	companyName := fallbackCompanyName
	if lead.Company != "" {
		business = "1"
		companyName = lead.Company
	}

	return cleanPayload(map[string]string{
		"firstname":    lead.FirstName,
		"lastname":     lead.LastName,
		"postcode":     lead.ZipCode,
		"streetname":   lead.Street,
		"city":         lead.City,
		"email":        lead.Email,
		"phone":        phone,
		"business":     business,
		"company_name": companyName,
	})
}

// cleanPayload returns a copy of payload without empty-valued fields, so
// absent CRM attributes are omitted downstream instead of arriving as "".
func cleanPayload(payload map[string]string) map[string]string {
	cleaned := make(map[string]string, len(payload))
	for k, v := range payload {
		if v != "" {
			cleaned[k] = v
		}
	}
	return cleaned
}
