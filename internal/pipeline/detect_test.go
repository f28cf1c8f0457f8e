package pipeline

import "testing"

func TestDetectImportPayloadPositive(t *testing.T) {
	body := "Name,Carrier,Premium,Policy Number,Phone\nJohn,Americo,45.99,AMC-1,555\n"
	res := DetectImportPayload("Weekly application import", body, nil)
	if !res.IsImport {
		t.Fatalf("score=%f reason=%s", res.Score, res.Reason)
	}
	if res.Reason != "rules_positive" {
		t.Fatalf("reason=%s", res.Reason)
	}
}

func TestDetectImportPayloadAttachment(t *testing.T) {
	res := DetectImportPayload("New business", "see attached spreadsheet", []string{"book_of_business.xlsx"})
	if !res.IsImport {
		t.Fatalf("score=%f", res.Score)
	}
}

func TestDetectImportPayloadNegative(t *testing.T) {
	res := DetectImportPayload("Lunch on Friday?", "Want to grab tacos at noon?", nil)
	if res.IsImport {
		t.Fatalf("score=%f", res.Score)
	}
	if res.Reason != "rules_negative" {
		t.Fatalf("reason=%s", res.Reason)
	}
}

func TestDetectScoreCapped(t *testing.T) {
	body := "import application policies clients leads submission spreadsheet\ncarrier,premium,policy,insured,product,dob,phone\nx,y,z,a,b,c,d\n"
	res := DetectImportPayload("import application spreadsheet", body, []string{"a.csv"})
	if res.Score > 1.0 {
		t.Fatalf("score=%f", res.Score)
	}
}

func TestLooksDelimited(t *testing.T) {
	if !looksDelimited("a,b,c\n1,2,3\n") {
		t.Fatal("csv body not recognized")
	}
	if looksDelimited("hello there\ngeneral kenobi\n") {
		t.Fatal("prose misread as delimited")
	}
}
