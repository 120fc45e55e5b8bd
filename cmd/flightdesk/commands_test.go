package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"flightdesk-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagName(t *testing.T) {
	assert.Equal(t, "carrid", flagName("Carrid"))
	assert.Equal(t, "order-date", flagName("OrderDate"))
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "Delete?"))
	assert.True(t, confirm(strings.NewReader(" YES \n"), &out, "Delete?"))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "Delete?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "Delete?"))
	assert.Contains(t, out.String(), "Delete? [y/N]")
}

func TestPrintCollection(t *testing.T) {
	col := entity.Collection{
		entity.NewRecord(entity.Field{Name: "Carrid", Value: "AA"}, entity.Field{Name: "Bookid", Value: "100"}),
		entity.NewRecord(entity.Field{Name: "Carrid", Value: "BB"}),
	}

	var out bytes.Buffer
	require.NoError(t, printCollection(&out, []string{"Carrid", "Bookid"}, col))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"#", "Carrid", "Bookid"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "AA", "100"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "BB"}, strings.Fields(lines[2]))
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"list", "show", "create", "delete", "serve"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	create, _, _ := root.Find([]string{"create"})
	assert.NotNil(t, create.Flags().Lookup("order-date"))
	del, _, _ := root.Find([]string{"delete"})
	assert.NotNil(t, del.Flags().Lookup("fldate"))
	assert.NotNil(t, del.Flags().Lookup("yes"))
	show, _, _ := root.Find([]string{"show"})
	assert.NotNil(t, show.Flags().Lookup("related"))
}

func TestDeleteWithMalformedKeySkipsConfirmation(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("y\n"))
	root.SetArgs([]string{"delete", "--carrid", "AA", "--connid", "17"})

	err := root.ExecuteContext(context.Background())
	require.ErrorIs(t, err, entity.ErrInvalidKey)
	assert.NotContains(t, out.String(), "Are you sure")
}

func TestReportDelete(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, reportDelete(&out, sessionEvent{kind: "collection"}))
	assert.Equal(t, "Record deleted\n", out.String())

	out.Reset()
	reloadFault := entity.NewFault(entity.TransportFault, "load", errors.New("connection reset"))
	err := reportDelete(&out, sessionEvent{kind: "fault", fault: reloadFault})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reloading bookings failed")
	assert.Equal(t, "Record deleted\n", out.String())

	out.Reset()
	deleteFault := entity.NewFault(entity.ConflictFault, "delete", entity.ErrNotFound)
	err = reportDelete(&out, sessionEvent{kind: "fault", fault: deleteFault})
	require.ErrorIs(t, err, entity.ErrNotFound)
	assert.Contains(t, err.Error(), "record delete failed")
	assert.Empty(t, out.String())
}
