package mutable_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/vocoder/mutable"
)

// mutableMock used to set up test cases for mutators
type mutableMock struct {
	mutable.Context
	value int
}

func (m *mutableMock) addDelta(delta int) mutable.Mutation {
	return m.Context.Mutate(func() error {
		m.value += delta
		return nil
	})
}

func TestPutMutations(t *testing.T) {
	tests := []struct {
		operations []int
		expected   []int
	}{
		{operations: []int{1}, expected: []int{10}},
		{operations: []int{2, 3}, expected: []int{20, 30}},
		{operations: []int{0, 4}, expected: []int{0, 40}},
	}
	for _, test := range tests {
		var (
			mutations mutable.Mutations
			mocks     []*mutableMock
		)
		for _, ops := range test.operations {
			m := &mutableMock{Context: mutable.Mutable()}
			mocks = append(mocks, m)
			for j := 0; j < ops; j++ {
				mutations = mutations.Put(m.addDelta(10))
			}
		}
		for i, m := range mocks {
			assert.NoError(t, mutations.ApplyTo(m.Context))
			assert.Equal(t, test.expected[i], m.value)
			// applied mutations are consumed
			assert.NoError(t, mutations.ApplyTo(m.Context))
			assert.Equal(t, test.expected[i], m.value)
		}
	}
}

func TestAppendMutations(t *testing.T) {
	a, b := &mutableMock{Context: mutable.Mutable()}, &mutableMock{Context: mutable.Mutable()}
	var mutations mutable.Mutations
	mutations = mutations.Append(mutable.Mutations{}.Put(a.addDelta(1)))
	mutations = mutations.Append(mutable.Mutations{}.Put(a.addDelta(2)).Put(b.addDelta(3)))
	assert.NoError(t, mutations.ApplyTo(a.Context))
	assert.NoError(t, mutations.ApplyTo(b.Context))
	assert.Equal(t, 3, a.value)
	assert.Equal(t, 3, b.value)
}

func TestApplyErrors(t *testing.T) {
	m := &mutableMock{Context: mutable.Mutable()}
	errTest := errors.New("test")
	var mutations mutable.Mutations
	mutations = mutations.Put(m.Context.Mutate(func() error { return errTest }))
	mutations = mutations.Put(m.addDelta(5))
	assert.ErrorIs(t, mutations.ApplyTo(m.Context), errTest)
	assert.Equal(t, 5, m.value)
}

func TestMutability(t *testing.T) {
	assert.False(t, mutable.Immutable().IsMutable())
	assert.True(t, mutable.Mutable().IsMutable())
	assert.Panics(t, func() {
		mutable.Immutable().Mutate(func() error { return nil })
	})
	var mutations mutable.Mutations
	assert.Nil(t, mutations.Put(mutable.Mutation{}))

	m := &mutableMock{Context: mutable.Mutable()}
	assert.NoError(t, m.addDelta(10).Apply())
	assert.Equal(t, 10, m.value)
}

func TestDestination(t *testing.T) {
	d := mutable.NewDestination()
	m := &mutableMock{Context: mutable.Mutable()}

	assert.NoError(t, d.Poll(m.Context))
	assert.Equal(t, 0, m.value)

	// producer doesn't block when slot is occupied
	d.Put(m.addDelta(1))
	d.Put(m.addDelta(2), m.addDelta(3))
	assert.NoError(t, d.Poll(m.Context))
	assert.Equal(t, 6, m.value)
	assert.NoError(t, d.Poll(m.Context))
	assert.Equal(t, 6, m.value)
}

func TestDestinationConcurrent(t *testing.T) {
	d := mutable.NewDestination()
	m := &mutableMock{Context: mutable.Mutable()}
	const puts = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < puts; i++ {
			d.Put(m.addDelta(1))
		}
	}()
	for m.value < puts {
		assert.NoError(t, d.Poll(m.Context))
	}
	wg.Wait()
	assert.Equal(t, puts, m.value)
}
