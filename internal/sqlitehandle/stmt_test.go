package sqlitehandle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmt(t *testing.T) {
	t.Run("PrepareRegistersCloseUnregisters", func(t *testing.T) {
		conn, _ := openTestConn(t)

		first, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)
		second, err := conn.Prepare("SELECT 2")
		require.NoError(t, err)

		assert.NotEqual(t, first.ID(), second.ID())
		assert.Equal(t, []StatementInfo{
			{ID: first.ID(), Query: "SELECT 1"},
			{ID: second.ID(), Query: "SELECT 2"},
		}, conn.Statements())

		assert.NoError(t, first.Close())
		assert.Equal(t, []StatementInfo{{ID: second.ID(), Query: "SELECT 2"}}, conn.Statements())

		assert.NoError(t, first.Close())
		assert.Equal(t, 1, conn.StatementCount())

		assert.NoError(t, second.Close())
		assert.Equal(t, 0, conn.StatementCount())
	})

	t.Run("PrepareInvalid", func(t *testing.T) {
		conn, _ := openTestConn(t)

		stmt, err := conn.Prepare("SELECT * FROM missing")
		assert.Nil(t, stmt)
		var engineErr *EngineError
		assert.ErrorAs(t, err, &engineErr)
		assert.Contains(t, engineErr.Message, "no such table")
		assert.Equal(t, 0, conn.StatementCount())

		_, err = conn.Prepare("   ")
		assert.ErrorAs(t, err, &engineErr)
	})

	t.Run("ReadOnly", func(t *testing.T) {
		conn, _ := openTestConn(t)

		_, err := conn.ExecRaw("CREATE TABLE t (id INTEGER PRIMARY KEY, val TEXT)")
		require.NoError(t, err)

		insert, err := conn.Prepare("INSERT INTO t (val) VALUES (?)")
		require.NoError(t, err)
		defer insert.Close()
		assert.False(t, insert.ReadOnly())

		sel, err := conn.Prepare("SELECT * FROM t")
		require.NoError(t, err)
		defer sel.Close()
		assert.True(t, sel.ReadOnly())
	})

	t.Run("RunWriteAndRead", func(t *testing.T) {
		conn, _ := openTestConn(t)

		_, err := conn.ExecRaw(`
			CREATE TABLE t (
				id INTEGER PRIMARY KEY,
				num_int INTEGER,
				num_float REAL,
				txt TEXT,
				bytes BLOB,
				nullable TEXT
			)
		`)
		require.NoError(t, err)

		insert, err := conn.Prepare(`
			INSERT INTO t (num_int, num_float, txt, bytes, nullable)
			VALUES (?, ?, ?, ?, ?)
		`)
		require.NoError(t, err)
		defer insert.Close()

		for i := 1; i <= 3; i++ {
			res, err := insert.Run(i*10, 3.14, "hola", []byte("raw"), nil)
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.RowsAffected)
			assert.Equal(t, int64(i), res.LastInsertID)
			assert.Nil(t, res.Rows)
		}

		sel, err := conn.Prepare("SELECT num_int, num_float, txt, bytes, nullable FROM t WHERE id = ?")
		require.NoError(t, err)
		defer sel.Close()

		res, err := sel.Run(2)
		require.NoError(t, err)
		assert.Equal(t, []string{"num_int", "num_float", "txt", "bytes", "nullable"}, res.Columns)
		types := make([]string, len(res.Types))
		for i, typ := range res.Types {
			types[i] = strings.ToUpper(typ)
		}
		assert.Equal(t, []string{"INTEGER", "REAL", "TEXT", "BLOB", "TEXT"}, types)
		require.Len(t, res.Rows, 1)

		row := res.Rows[0]
		assert.Equal(t, int64(20), row[0])
		assert.Equal(t, 3.14, row[1])
		assert.Equal(t, "hola", row[2])
		assert.Equal(t, []byte("raw"), row[3])
		assert.Nil(t, row[4])

		res, err = sel.Run(99)
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
	})

	t.Run("RunReturning", func(t *testing.T) {
		conn, _ := openTestConn(t)

		_, err := conn.ExecRaw("CREATE TABLE t (id INTEGER PRIMARY KEY, val TEXT)")
		require.NoError(t, err)

		insert, err := conn.Prepare("INSERT INTO t (val) VALUES (?), (?) RETURNING id, val")
		require.NoError(t, err)
		defer insert.Close()
		assert.False(t, insert.ReadOnly())

		res, err := insert.Run("a", "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "val"}, res.Columns)
		assert.Equal(t, [][]any{{int64(1), "a"}, {int64(2), "b"}}, res.Rows)
		assert.Equal(t, int64(2), res.RowsAffected)
		assert.Equal(t, int64(2), res.LastInsertID)

		update, err := conn.Prepare("UPDATE t SET val = upper(val) RETURNING val")
		require.NoError(t, err)
		defer update.Close()

		res, err = update.Run()
		require.NoError(t, err)
		assert.ElementsMatch(t, [][]any{{"A"}, {"B"}}, res.Rows)
		assert.Equal(t, int64(2), res.RowsAffected)
	})

	t.Run("RunAfterClose", func(t *testing.T) {
		conn, _ := openTestConn(t)

		stmt, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)
		require.NoError(t, stmt.Close())

		_, err = stmt.Run()
		var engineErr *EngineError
		assert.ErrorAs(t, err, &engineErr)
		assert.False(t, stmt.ReadOnly())
	})

	t.Run("RunConstraintViolation", func(t *testing.T) {
		conn, _ := openTestConn(t)

		_, err := conn.ExecRaw("CREATE TABLE t (id INTEGER PRIMARY KEY, val TEXT NOT NULL)")
		require.NoError(t, err)

		insert, err := conn.Prepare("INSERT INTO t (val) VALUES (?)")
		require.NoError(t, err)
		defer insert.Close()

		_, err = insert.Run(nil)
		var engineErr *EngineError
		assert.ErrorAs(t, err, &engineErr)
		assert.Contains(t, engineErr.Message, "NOT NULL")
	})
}
