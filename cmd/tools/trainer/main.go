// Command trainer fits the emotion models offline. It reads the labeled
// dialogue corpus and the emotion dictionary, applies the dictionary as
// weak supervision (label replacement plus a bracketed text tag), trains
// the main-emotion ensemble and one sub-emotion ensemble per main
// emotion, reports accuracy, and writes the JSON artifacts the server
// loads at startup.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/moodflick/backend/internal/analysis/forest"
	"github.com/moodflick/backend/internal/analysis/lexicon"
	"github.com/moodflick/backend/internal/analysis/vectorizer"
	"github.com/moodflick/backend/internal/mlcodec"
)

const (
	mainMaxFeatures = 4000
	subMaxFeatures  = 3000
	mainTrees       = 350
	subTrees        = 300
)

func main() {
	dataPath := flag.String("data", "data/emotion_data.csv", "labeled dialogue corpus")
	dictPath := flag.String("dict", "data/emotion_dictionary.csv", "emotion dictionary")
	outDir := flag.String("out", "models", "artifact output directory")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	rows, err := loadDataset(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	lex, err := loadLexicon(*dictPath)
	if err != nil {
		log.Fatalf("failed to load dictionary: %v", err)
	}
	log.Printf("loaded %d rows, %d dictionary emotions", len(rows), len(lex.Entries()))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create %s: %v", *outDir, err)
	}

	texts := make([]string, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		// Dictionary hits replace the annotated label and tag the text,
		// baking the lexicon signal into both the label and the features.
		if emotion, ok := lex.Match(row.Text); ok {
			labels[i] = emotion
		} else {
			labels[i] = row.MainEmotion
		}
		texts[i] = lex.Tag(row.Text)
	}

	trainMain(texts, labels, *outDir, *seed)
	trainSub(rows, *outDir, *seed)

	log.Printf("all artifacts written to %s", *outDir)
}

func trainMain(texts, labels []string, outDir string, seed int64) {
	log.Println("training main-emotion model...")

	trainIdx, testIdx := stratifiedSplit(labels, 0.2, seed)

	vec := vectorizer.Fit(pick(texts, trainIdx), vectorizer.Options{
		MinN: 1, MaxN: 3, MinDocFreq: 2, MaxFeatures: mainMaxFeatures,
	})
	log.Printf("main vectorizer fitted: %d dimensions", vec.Dimensions())

	xTrain := transformAll(vec, pick(texts, trainIdx))
	xTest := transformAll(vec, pick(texts, testIdx))
	yTrain := pick(labels, trainIdx)
	yTest := pick(labels, testIdx)

	model, err := forest.Train(xTrain, yTrain, forest.Options{Trees: mainTrees, Seed: seed})
	if err != nil {
		log.Fatalf("main model training failed: %v", err)
	}

	fmt.Println("\n[main-emotion model]")
	fmt.Printf("Train accuracy: %.4f\n", accuracy(model, xTrain, yTrain))
	fmt.Printf("Test  accuracy: %.4f\n", accuracy(model, xTest, yTest))
	printClassificationReport(model, xTest, yTest)

	mustSave(filepath.Join(outDir, mlcodec.FileMainVectorizer), vec)
	mustSave(filepath.Join(outDir, mlcodec.FileMainModel), model)
}

func trainSub(rows []row, outDir string, seed int64) {
	log.Println("training sub-emotion models...")

	groups := make(map[string][]row)
	var order []string
	for _, r := range rows {
		if _, ok := groups[r.MainEmotion]; !ok {
			order = append(order, r.MainEmotion)
		}
		groups[r.MainEmotion] = append(groups[r.MainEmotion], r)
	}

	vecs := make(map[string]*vectorizer.Model)
	models := make(map[string]*forest.Forest)
	for _, mainEmotion := range order {
		group := groups[mainEmotion]
		if distinctSubLabels(group) < 2 {
			log.Printf("[%s] only one sub-emotion, skipping", mainEmotion)
			continue
		}

		texts := make([]string, len(group))
		labels := make([]string, len(group))
		for i, r := range group {
			texts[i] = r.Text
			labels[i] = r.SubEmotion
		}

		vec := vectorizer.Fit(texts, vectorizer.Options{
			MinN: 1, MaxN: 3, MinDocFreq: 2, MaxFeatures: subMaxFeatures,
		})
		model, err := forest.Train(transformAll(vec, texts), labels, forest.Options{Trees: subTrees, Seed: seed})
		if err != nil {
			log.Printf("[%s] sub-emotion training failed, skipping: %v", mainEmotion, err)
			continue
		}

		vecs[mainEmotion] = vec
		models[mainEmotion] = model
		log.Printf("[%s] sub-emotion model trained (%d labels)", mainEmotion, len(model.Classes))
	}

	mustSave(filepath.Join(outDir, mlcodec.FileSubVectorizers), vecs)
	mustSave(filepath.Join(outDir, mlcodec.FileSubModels), models)
}

type row struct {
	Text        string
	MainEmotion string
	SubEmotion  string
}

// loadDataset reads the corpus CSV, locating the 대화/대표감정/세부감정
// columns by header name.
func loadDataset(path string) ([]row, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s holds no data rows", path)
	}

	text, err := columnIndex(records[0], "대화")
	if err != nil {
		return nil, err
	}
	main, err := columnIndex(records[0], "대표감정")
	if err != nil {
		return nil, err
	}
	sub, err := columnIndex(records[0], "세부감정")
	if err != nil {
		return nil, err
	}

	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) <= text || len(rec) <= main || len(rec) <= sub {
			continue
		}
		if rec[text] == "" || rec[main] == "" {
			continue
		}
		rows = append(rows, row{Text: rec[text], MainEmotion: rec[main], SubEmotion: rec[sub]})
	}
	return rows, nil
}

// loadLexicon reads the 감정/단어 dictionary CSV, preserving first-seen
// emotion order so overrides stay reproducible.
func loadLexicon(path string) (*lexicon.Lexicon, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s holds no data rows", path)
	}

	emotionCol, err := columnIndex(records[0], "감정")
	if err != nil {
		return nil, err
	}
	wordCol, err := columnIndex(records[0], "단어")
	if err != nil {
		return nil, err
	}

	byEmotion := make(map[string][]string)
	var order []string
	for _, rec := range records[1:] {
		if len(rec) <= emotionCol || len(rec) <= wordCol {
			continue
		}
		emotion, word := rec[emotionCol], rec[wordCol]
		if emotion == "" || word == "" {
			continue
		}
		if _, ok := byEmotion[emotion]; !ok {
			order = append(order, emotion)
		}
		byEmotion[emotion] = append(byEmotion[emotion], word)
	}

	entries := make([]lexicon.Entry, 0, len(order))
	for _, emotion := range order {
		entries = append(entries, lexicon.Entry{Emotion: emotion, Triggers: byEmotion[emotion]})
	}
	return lexicon.New(entries), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if stripBOM(col) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", name, header)
}

// stripBOM drops the UTF-8 byte-order mark exported by spreadsheet
// tools.
func stripBOM(s string) string {
	const bom = "\xef\xbb\xbf"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func transformAll(vec *vectorizer.Model, texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = vec.Transform(t)
	}
	return out
}

func distinctSubLabels(group []row) int {
	seen := make(map[string]struct{})
	for _, r := range group {
		if r.SubEmotion != "" {
			seen[r.SubEmotion] = struct{}{}
		}
	}
	return len(seen)
}

func mustSave(path string, v any) {
	if err := mlcodec.Save(path, v); err != nil {
		log.Fatalf("failed to save %s: %v", path, err)
	}
}
