package github

// Profile is the subset of the user endpoint the updater reads.
type Profile struct {
	Login    string  `json:"login"`
	Name     *string `json:"name"`
	Location *string `json:"location"`
}
