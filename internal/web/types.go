package web

type GameErrorData struct {
	Code    string
	Message string
	BackURL string
}

// BuzzerSound is one selectable sound offered on the join screen.
type BuzzerSound struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var BuzzerSounds = []BuzzerSound{
	{ID: "default", Name: "Default"},
	{ID: "bell", Name: "Bell"},
	{ID: "buzzer", Name: "Buzzer"},
	{ID: "ding", Name: "Ding"},
	{ID: "horn", Name: "Horn"},
}

func NewGameErrorData(code string) GameErrorData {
	return GameErrorData{
		Code:    code,
		Message: "Game with code '" + code + "' does not exist or is no longer active.",
		BackURL: "/",
	}
}
