package postgres

type teamInsertModel struct {
	ProviderID int64  `db:"provider_id"`
	Name       string `db:"name"`
}
