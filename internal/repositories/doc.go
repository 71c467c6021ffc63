// Package repositories groups the PostgreSQL repositories, one package per
// table. The integration test in this directory exercises them together.
package repositories
