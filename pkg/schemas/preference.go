package schemas

type PreferenceIn struct {
	Value string `json:"value"`
}

type PreferenceOut struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}
