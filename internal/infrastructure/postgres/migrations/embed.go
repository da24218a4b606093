// Package migrations contiene el esquema SQL del libro de inventario, embebido en el binario.
package migrations

import "embed"

// FS archivos NNNN_nombre.{up,down}.sql en formato golang-migrate.
//
//go:embed *.sql
var FS embed.FS
