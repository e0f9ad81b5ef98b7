package main

import (
	"context"
	"fmt"

	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
)

func (cli *commandLine) provisionTeacher(nt teacher.NewTeacher) error {
	if err := nt.Validate(cli.validate); err != nil {
		return err
	}
	res, err := cli.provisioner.ProvisionTeacher(context.Background(), nt)
	if err != nil {
		return err
	}
	fmt.Printf("teacher %d provisioned; login: %s\n", res.ID, res.LoginEmail)
	return nil
}

func (cli *commandLine) provisionStudent(ns student.NewStudent) error {
	if err := ns.Validate(cli.validate); err != nil {
		return err
	}
	res, err := cli.provisioner.ProvisionStudent(context.Background(), ns)
	if err != nil {
		return err
	}
	fmt.Printf("student %d provisioned; login: %s\n", res.ID, res.LoginEmail)
	return nil
}
