package store

import sq "github.com/Masterminds/squirrel"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// completedOnly matches rows whose status is completed or was never set.
var completedOnly = sq.Or{sq.Eq{"status": nil}, sq.Eq{"status": "completed"}}
