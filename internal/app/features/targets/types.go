package targets

// MaxDescriptionLen caps stored descriptions, in runes.
const MaxDescriptionLen = 5000

type createBody struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TeamSize     int    `json:"teamSize"`
	IsRecruiting *bool  `json:"isRecruiting"`
}

type recruitingBody struct {
	IsRecruiting *bool `json:"isRecruiting"`
}
