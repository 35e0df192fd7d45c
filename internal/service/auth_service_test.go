package service

import "testing"

func TestJWT_IssueAndParse(t *testing.T) {
	InitJWT("test-secret")

	token, err := IssueJWT(42)
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if userID != 42 {
		t.Fatalf("ожидался user_id 42, получено %d", userID)
	}
}

func TestJWT_RejectsGarbage(t *testing.T) {
	InitJWT("test-secret")

	if _, err := ParseJWT("не.токен.вообще"); err != ErrInvalidToken {
		t.Fatalf("мусор должен отклоняться: %v", err)
	}
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	InitJWT("secret-one")
	token, err := IssueJWT(7)
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}

	InitJWT("secret-two")
	if _, err := ParseJWT(token); err != ErrInvalidToken {
		t.Fatalf("токен с чужим секретом должен отклоняться: %v", err)
	}
}
