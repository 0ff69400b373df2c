package models

type Unit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Chapter struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Units []Unit `json:"units"`
}
