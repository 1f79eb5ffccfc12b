package diagnosis

// defaultPersonality is used for archetypes without a dedicated line.
const defaultPersonality = "あなたは森の木々のように、静かで芯の強いタイプかもしれません。日々の喧騒の中で、少し自分の根っこを休める時間が必要そうです。"

var fallbackPersonality = map[string]string{
	"owl":      "あなたは夜の森を見守るフクロウのように、まわりをよく見ている観察上手なタイプかも？ 目と頭を使い続けた分だけ、静かに休む時間が必要そうです。",
	"bear":     "あなたは森をずっしり支えるクマのように、責任感の強い頑張り屋さんタイプかも？ 肩に乗せた荷物を、ときどき下ろしてあげてください。",
	"cat":      "あなたは木漏れ日を探すネコのように、気配りが細やかで感受性の豊かなタイプかも？ 心のゆらぎが頭皮にも出やすいので、やさしく整えましょう。",
	"sloth":    "あなたは枝の上でひと休みするナマケモノのように、本当はがんばりすぎてしまうタイプかも？ 深い眠りで心と体を充電してあげましょう。",
	"squirrel": "あなたは森を駆けまわるリスのように、いつも先回りして動ける気配り上手なタイプかも？ ときには立ち止まって、頭の中を空っぽにする時間を。",
}

// FallbackPersonality returns the static personality line for an archetype.
func FallbackPersonality(animalID string) string {
	if text, ok := fallbackPersonality[animalID]; ok {
		return text
	}
	return defaultPersonality
}
