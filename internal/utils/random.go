package utils

import (
	"math/rand"

	"github.com/brianvoe/gofakeit"
	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var departments = []string{
	"Engineering", "HR", "Finance", "Marketing", "Sales", "Operations", "Legal",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailLocalPartFromChineseName 取每个字拼音的前缀再加上随机数字，例如 王伟 -> wangw42
func GenerateEmailLocalPartFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	localPart := ""

	for _, p := range pinyinArray {
		length := rand.Intn(len(p)) + 1
		localPart += p[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		localPart += string(digits[rand.Intn(len(digits))])
	}

	return localPart
}

// GenerateRandomEmployeeInput 部门和职位可能为空，以覆盖可选字段
func GenerateRandomEmployeeInput(emailDomainName string) domain.EmployeeInput {
	name := GenerateRandomChineseName()

	input := domain.EmployeeInput{
		Name:  name,
		Email: GenerateEmailLocalPartFromChineseName(name) + "@" + emailDomainName,
	}

	if rand.Intn(10) > 0 {
		department := departments[rand.Intn(len(departments))]
		input.Department = &department
	}
	if rand.Intn(10) > 0 {
		role := gofakeit.JobTitle()
		input.Role = &role
	}

	return input
}
