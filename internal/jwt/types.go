package jwt

type Role int

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type Claims struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
