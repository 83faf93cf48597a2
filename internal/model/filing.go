package model

import "time"

// Filing is the metadata of one SEC filing returned by a filing search.
type Filing struct {
	AccessionNo    string    `json:"accessionNo"`
	FiledAt        time.Time `json:"filedAt"`
	FormType       string    `json:"formType"`
	PeriodOfReport string    `json:"periodOfReport"`
	CIK            string    `json:"cik"`
	URL            string    `json:"url"`
}
