package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/bookstore/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/bookstore?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestMySQLRepository(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	repo := NewMySQLRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))

	runRepositoryContract(t, func(t *testing.T) port.BookRepository {
		_, err := db.ExecContext(context.Background(), `DELETE FROM books`)
		require.NoError(t, err)
		return repo
	})
}
