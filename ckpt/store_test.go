// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ckpt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/paddyschmidt/gofe2/rve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ckpt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMaterials(t *testing.T, n int) (tpl *rve.Template, mats []*rve.Material) {
	t.Helper()
	tpl, err := rve.LoadTemplate("../rve/data/cube1.rve", nil)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		m, err := rve.NewMaterial(tpl, 10+i, i%2, nil, 1e-2)
		require.NoError(t, err)
		mats = append(mats, m)
	}
	return
}

func TestOpenValidation(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)

	var none *Store
	assert.NoError(t, none.Close())
	_, _, err = none.LatestStep(context.Background())
	assert.Error(t, err)
}

func TestPutGet(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	_, _, err := s.LatestStep(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.PutStep(ctx, 1, 0.25))
	require.NoError(t, s.PutStep(ctx, 2, 0.5))
	require.NoError(t, s.Put(ctx, Record{Step: 2, Eid: 3, Ip: 1, EncType: "json", Data: []byte("{}")}))

	step, tt, err := s.LatestStep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, step)
	assert.Equal(t, 0.5, tt)

	r, err := s.Get(ctx, 2, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "json", r.EncType)
	assert.Equal(t, []byte("{}"), r.Data)

	// replace
	require.NoError(t, s.Put(ctx, Record{Step: 2, Eid: 3, Ip: 1, EncType: "gob", Data: []byte{1, 2}}))
	r, err = s.Get(ctx, 2, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "gob", r.EncType)
	assert.Equal(t, []byte{1, 2}, r.Data)

	n, err := s.Npoints(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, 2, 3, 0)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutValidation(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutStep(ctx, 0, 0))

	assert.Error(t, s.PutStep(ctx, -1, 0))
	assert.Error(t, s.Put(ctx, Record{Step: 0, EncType: "xml", Data: []byte{1}}))
	assert.Error(t, s.Put(ctx, Record{Step: 0, EncType: "gob"}))
	assert.Error(t, s.Put(ctx, Record{Step: 7, EncType: "gob", Data: []byte{1}}), "step 7 does not exist")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, s.PutStep(cancelled, 1, 1))
}

func TestSaveLoadStep(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	F := [][]float64{{1.01, 0.002, 0}, {0, 0.995, 0}, {0, 0, 1}}
	_, mats := newMaterials(t, 3)
	σ := make([][][]float64, len(mats))
	for i, m := range mats {
		var err error
		σ[i], err = m.Stress(F)
		require.NoError(t, err)
		m.Update()
	}
	require.NoError(t, s.SaveStep(ctx, 1, 1.0, mats, ""))

	n, err := s.Npoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// restore into fresh materials
	_, restored := newMaterials(t, 3)
	require.NoError(t, s.LoadStep(ctx, 1, restored))
	for i, m := range restored {
		require.True(t, m.Inst.Converged())
		sig, err := m.Inst.AveragedCauchyStress(F, m.Pt.J)
		require.NoError(t, err)
		for a := 0; a < 3; a++ {
			assert.InDeltaSlice(t, σ[i][a], sig[a], 1e-12)
			assert.InDeltaSlice(t, F[a], m.Pt.Fprev[a], 1e-15)
		}
	}

	// missing step
	err = s.LoadStep(ctx, 5, restored)
	assert.True(t, errors.Is(err, ErrNotFound))
	var pe *PointError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 5, pe.Step)
	assert.Equal(t, restored[0].Eid, pe.Eid)
	assert.Contains(t, err.Error(), "step 5")
}

func TestSaveStepUnconverged(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	_, mats := newMaterials(t, 2)
	err := s.SaveStep(ctx, 1, 0.1, mats, "gob")
	var ce *rve.ContractError
	assert.True(t, errors.As(err, &ce))
	var pe *PointError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Step)
	assert.Equal(t, mats[0].Eid, pe.Eid)
	assert.Equal(t, mats[0].Ip, pe.Ip)

	// nothing written
	_, _, err = s.LatestStep(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))
}
