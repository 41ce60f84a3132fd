package handlers

import "github.com/jackc/pgx/v5/pgtype"

func textPtr(v pgtype.Text) *string {
	if v.Valid {
		return &v.String
	}
	return nil
}
