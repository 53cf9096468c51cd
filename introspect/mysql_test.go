package introspect

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	mysqltest "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/lucasefe/schemadot/schema"
)

const mysqlFixture = `
CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	score INT DEFAULT 0
);

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
`

func TestMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mysql integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mysqltest.Run(ctx,
		"mysql:8.0.35",
		mysqltest.WithDatabase("schemadot"),
		mysqltest.WithUsername("root"),
		mysqltest.WithPassword("password"),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate mysql container: %v", err)
		}
	})
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "multiStatements=true")
	require.NoError(t, err)

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, mysqlFixture)
	require.NoError(t, err)

	s, err := Open(ctx, "mysql://"+dsn)
	require.NoError(t, err)

	require.Equal(t, []string{"orders", "users"}, s.TableNames())
	require.Equal(t, []schema.Edge{
		{SourceTable: "orders", SourceColumn: "user_id", TargetTable: "users", TargetColumn: "id"},
	}, s.ForeignKeys)

	users, ok := s.Table("users")
	require.True(t, ok)
	require.Len(t, users.Columns, 3)

	require.Equal(t, "id", users.Columns[0].Name)
	require.True(t, users.Columns[0].IsPrimaryKey)
	require.Equal(t, "varchar(100)", users.Columns[1].Type)
	require.False(t, users.Columns[1].Nullable)
	require.NotNil(t, users.Columns[2].Default)
	require.Equal(t, "0", *users.Columns[2].Default)

	c := &mysqlCatalog{db: db, mapper: NewDeclaredTypeMapper(nil)}
	_, err = c.columns(ctx, catalogName{name: "ghost"})
	require.True(t, errors.Is(err, errTableNotFound), "got %v", err)
}
