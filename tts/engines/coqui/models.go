package coqui

// Models lists the model names the adapter knows how to offer. Any other
// model name the server can resolve still works; these are the ones surfaced
// to callers.
var Models = []string{
	"tts_models/multilingual/multi-dataset/xtts_v2",
	"tts_models/multilingual/multi-dataset/your_tts",
	"tts_models/en/vctk/vits",
	"tts_models/en/ljspeech/tacotron2-DDC",
	"tts_models/en/ljspeech/vits",
	"tts_models/de/thorsten/vits",
	"tts_models/es/css10/vits",
	"tts_models/fr/css10/vits",
}

// cloningModels can condition synthesis on a reference recording.
var cloningModels = map[string]bool{
	"tts_models/multilingual/multi-dataset/xtts_v2":  true,
	"tts_models/multilingual/multi-dataset/your_tts": true,
}

// modelSpeakers maps multi-speaker models to their stock voices. The first
// entry doubles as the fallback when no reference audio is supplied to a
// cloning model.
var modelSpeakers = map[string][]string{
	"tts_models/multilingual/multi-dataset/xtts_v2": {
		"Claribel Dervla", "Daisy Studious", "Gracie Wise", "Tammie Ema",
		"Alison Dietlinde", "Ana Florence", "Annmarie Nele", "Asya Anara",
		"Andrew Chipper", "Badr Odhiambo", "Dionisio Schuyler", "Royston Min",
	},
	"tts_models/multilingual/multi-dataset/your_tts": {
		"female-en-5", "female-pt-4", "male-en-2", "male-pt-3",
	},
	"tts_models/en/vctk/vits": {
		"p225", "p226", "p227", "p228", "p229", "p230", "p231", "p232",
		"p233", "p234", "p236", "p237", "p238", "p239", "p240", "p241",
	},
}

// Speakers returns the stock voice roster for a model, nil for single
// speaker models.
func Speakers(model string) []string {
	return modelSpeakers[model]
}

func supportsCloning(model string) bool {
	return cloningModels[model]
}
