package refcontext_test

import (
	"fmt"

	"github.com/surveilops/surveilops/refcontext"
)

func ExampleNew() {
	rc, err := refcontext.New(refcontext.Config{
		Kinds:    []refcontext.Kind{refcontext.KindEntityID, refcontext.KindCompanySymbol},
		DedupKey: []refcontext.Kind{refcontext.KindEntityID, refcontext.KindCompanySymbol},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	rc.Record("get_entity", map[refcontext.Kind]string{
		refcontext.KindEntityID:      "ENT-REL-001",
		refcontext.KindCompanySymbol: "RELIANCE",
	}, "Get Mukesh Ambani entity")

	fmt.Println(rc.Resolve(refcontext.KindEntityID, "REL"))
	fmt.Println(rc.Resolve(refcontext.KindCompanySymbol, ""))
	// Output:
	// ENT-REL-001
	// RELIANCE
}

func ExampleContext_ResolveMany() {
	rc, _ := refcontext.New(refcontext.Config{
		Kinds:    []refcontext.Kind{refcontext.KindEntityID, refcontext.KindCompanySymbol},
		DedupKey: []refcontext.Kind{refcontext.KindEntityID},
		Seed: []refcontext.Record{
			{
				Method: "check_insider_status",
				Fields: map[refcontext.Kind]string{
					refcontext.KindEntityID:      "SUS-001",
					refcontext.KindCompanySymbol: "RELIANCE",
				},
				Prompt: "Is suspect SUS-001 a RELIANCE insider?",
			},
		},
	})

	resolved := rc.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindEntityID:      "SUS",
		refcontext.KindCompanySymbol: "",
	})
	fmt.Println(resolved[refcontext.KindEntityID], resolved[refcontext.KindCompanySymbol])
	// Output:
	// SUS-001 RELIANCE
}
