package session

import "testing"

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()

	if _, ok := repo.Load("user-1"); ok {
		t.Error("empty repository must not return a session")
	}

	s := New(testProblems(2))
	repo.Save("user-1", s)

	loaded, ok := repo.Load("user-1")
	if !ok {
		t.Fatal("saved session not found")
	}
	if loaded != s {
		t.Error("loaded session is not the saved instance")
	}

	repo.Delete("user-1")
	if _, ok := repo.Load("user-1"); ok {
		t.Error("deleted session still present")
	}
}

func TestMemoryRepositoryIsolatesUsers(t *testing.T) {
	repo := NewMemoryRepository()
	a := New(testProblems(1))
	b := New(testProblems(2))

	repo.Save("user-a", a)
	repo.Save("user-b", b)

	gotA, _ := repo.Load("user-a")
	gotB, _ := repo.Load("user-b")
	if gotA == gotB {
		t.Error("sessions must be stored per user")
	}
}
