package matching

import "testing"

func TestMatches_SubjectBidirectionalSubstring(t *testing.T) {
	tutor := TutorAttributes{Subjects: []string{"Mathematics"}}
	if !Matches(tutor, Candidate{Subject: "Math"}) {
		t.Fatalf("expected tutor subject Mathematics to match requirement Math")
	}

	tutor = TutorAttributes{Subjects: []string{"Math"}}
	if !Matches(tutor, Candidate{Subject: "Mathematics"}) {
		t.Fatalf("expected tutor subject Math to match requirement Mathematics")
	}

	tutor = TutorAttributes{Subjects: []string{"Physics"}}
	if Matches(tutor, Candidate{Subject: "Chemistry"}) {
		t.Fatalf("expected Physics not to match Chemistry")
	}
}

func TestMatches_SubjectCaseInsensitive(t *testing.T) {
	tutor := TutorAttributes{Subjects: []string{"ENGLISH"}}
	if !Matches(tutor, Candidate{Subject: "english literature"}) {
		t.Fatalf("expected case-folded subject match")
	}
}

func TestMatches_EmptyTutorSubjectsFailOpen(t *testing.T) {
	tutor := TutorAttributes{Subjects: nil}
	if !Matches(tutor, Candidate{Subject: "Piano"}) {
		t.Fatalf("expected tutor with no subjects to see every requirement")
	}
}

func TestMatches_EmptyRequirementSubjectRejected(t *testing.T) {
	// "" is contained in every string; without the guard a blank subject
	// would match every tutor that filters by subject.
	tutor := TutorAttributes{Subjects: []string{"Math"}}
	if Matches(tutor, Candidate{Subject: ""}) {
		t.Fatalf("expected blank requirement subject to be rejected")
	}
	if Matches(tutor, Candidate{Subject: "   "}) {
		t.Fatalf("expected whitespace requirement subject to be rejected")
	}

	// ...but a tutor with no subject filter still sees it.
	if !Matches(TutorAttributes{}, Candidate{Subject: ""}) {
		t.Fatalf("expected blank subject to pass for unfiltered tutor")
	}
}

func TestMatches_LocationRules(t *testing.T) {
	cases := []struct {
		name  string
		tutor TutorAttributes
		cand  Candidate
		want  bool
	}{
		{
			name:  "city substring of location",
			tutor: TutorAttributes{City: "Pune"},
			cand:  Candidate{Location: "Pune, Kothrud"},
			want:  true,
		},
		{
			name:  "location substring of city",
			tutor: TutorAttributes{City: "Greater Mumbai"},
			cand:  Candidate{Location: "mumbai"},
			want:  true,
		},
		{
			name:  "area substring of location",
			tutor: TutorAttributes{City: "Nagpur", Area: "Kothrud"},
			cand:  Candidate{Location: "Pune, Kothrud"},
			want:  true,
		},
		{
			name:  "no overlap",
			tutor: TutorAttributes{City: "Delhi"},
			cand:  Candidate{Location: "Mumbai"},
			want:  false,
		},
		{
			name:  "requirement location unset fails open",
			tutor: TutorAttributes{City: "Delhi"},
			cand:  Candidate{Location: ""},
			want:  true,
		},
		{
			name:  "tutor city unset fails open",
			tutor: TutorAttributes{Area: "Kothrud"},
			cand:  Candidate{Location: "Mumbai"},
			want:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Matches(tc.tutor, tc.cand); got != tc.want {
				t.Fatalf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatches_SubjectAndLocationConjunction(t *testing.T) {
	tutor := TutorAttributes{Subjects: []string{"Math", "Physics"}, City: "Pune"}

	if !Matches(tutor, Candidate{Subject: "Mathematics", Location: "Pune, Kothrud"}) {
		t.Fatalf("expected matching subject and location to pass")
	}
	if Matches(tutor, Candidate{Subject: "Dance", Location: "Mumbai"}) {
		t.Fatalf("expected mismatched subject and location to fail")
	}
	if Matches(tutor, Candidate{Subject: "Math", Location: "Mumbai"}) {
		t.Fatalf("expected location mismatch to fail despite subject match")
	}
}

func TestSubjectPrecheck(t *testing.T) {
	if !SubjectPrecheck([]string{"Math"}, "mathematics") {
		t.Fatalf("expected precheck hit")
	}
	if SubjectPrecheck([]string{"Math"}, "Dance") {
		t.Fatalf("expected precheck miss")
	}
	if !SubjectPrecheck(nil, "Dance") {
		t.Fatalf("expected precheck to fail open with no subjects")
	}
}
