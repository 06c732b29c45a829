// Package migrations embeds the BigQuery schema migrations applied by cmd/migrate.
package migrations

import "embed"

// BigQuery holds the files under bigquery/, named NNNN_description.sql.
// {{PROJECT_ID}} and {{DATASET_ID}} placeholders are substituted at apply time.
//
//go:embed bigquery/*.sql
var BigQuery embed.FS

// BigQueryDir is the directory of BigQuery inside the embedded filesystem.
const BigQueryDir = "bigquery"
